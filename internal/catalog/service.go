package catalog

import (
	"context"
	"strings"

	"github.com/maisonvelaire/storefront-backend/pkg/backend"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

// catalogBackend is the read-only slice of the commerce backend.
type catalogBackend interface {
	ListProducts(ctx context.Context, category string) ([]types.Product, error)
	GetProduct(ctx context.Context, id string) (*types.Product, error)
	ListCategories(ctx context.Context) ([]backend.Category, error)
	ListColors(ctx context.Context) ([]types.Color, error)
}

// Service is the storefront's catalog read path. The backend owns the data;
// this layer normalizes queries and keeps handler code off the HTTP client.
type Service struct {
	backend catalogBackend
}

type ServiceParams struct {
	Backend catalogBackend
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog service requires a backend client")
	}
	return &Service{backend: params.Backend}, nil
}

// ListProducts returns catalog products, optionally filtered by category.
func (s *Service) ListProducts(ctx context.Context, category string) ([]types.Product, error) {
	return s.backend.ListProducts(ctx, strings.TrimSpace(category))
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.backend.GetProduct(ctx, id)
}

// ListCategories returns the category taxonomy.
func (s *Service) ListCategories(ctx context.Context) ([]backend.Category, error) {
	return s.backend.ListCategories(ctx)
}

// ListColors returns the color palette shared across products.
func (s *Service) ListColors(ctx context.Context) ([]types.Color, error) {
	return s.backend.ListColors(ctx)
}
