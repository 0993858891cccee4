package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maisonvelaire/storefront-backend/internal/analytics"
	"github.com/maisonvelaire/storefront-backend/internal/cart"
	"github.com/maisonvelaire/storefront-backend/pkg/backend"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/razorpay"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

// orderBackend is the slice of the commerce backend the coordinator needs.
type orderBackend interface {
	CreateOrder(ctx context.Context, input backend.CreateOrderInput) (*backend.Order, error)
	ConfirmPayment(ctx context.Context, input backend.ConfirmPaymentInput) error
}

// paymentGateway is the slice of the gateway client the coordinator needs.
type paymentGateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderParams) (string, error)
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

// Service sequences a checkout attempt across the backend and the payment
// gateway. The order record always exists before the gateway intent so every
// payment can be tied back to an order id; attempts abandoned mid-flight
// leave a pending order for backend housekeeping to reconcile.
type Service struct {
	backend   orderBackend
	gateway   paymentGateway
	attempts  *AttemptStore
	analytics analytics.Recorder
	logger    *logger.Logger
}

type ServiceParams struct {
	Backend   orderBackend
	Gateway   paymentGateway
	Attempts  *AttemptStore
	Analytics analytics.Recorder
	Logger    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil || params.Gateway == nil || params.Attempts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires backend, gateway and attempt store")
	}
	rec := params.Analytics
	if rec == nil {
		rec = analytics.NewRecorder(nil, nil)
	}
	return &Service{
		backend:   params.Backend,
		gateway:   params.Gateway,
		attempts:  params.Attempts,
		analytics: rec,
		logger:    params.Logger,
	}, nil
}

// BeginInput is what the shopper submits from the shipping form, alongside
// the cart loaded from their cookie.
type BeginInput struct {
	CustomerEmail   string
	Items           cart.Cart
	ShippingAddress types.ShippingAddress
}

// Session is everything the browser needs to open the hosted checkout.
type Session struct {
	AttemptID      string `json:"attempt_id"`
	GatewayKeyID   string `json:"gateway_key_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// Begin creates the backend order, registers the amount with the gateway and
// parks the attempt in awaiting_payment until the completion callback.
func (s *Service) Begin(ctx context.Context, input BeginInput) (*Session, error) {
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	attempt := &Attempt{
		ID:        uuid.NewString(),
		State:     StatePending,
		Email:     input.CustomerEmail,
		CreatedAt: time.Now().UTC(),
	}
	if s.logger != nil {
		ctx = s.logger.WithAttemptID(ctx, attempt.ID)
	}
	s.analytics.CheckoutStage(ctx, "begin")

	items := make([]backend.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.ID == "" || line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line quantities must be at least 1")
		}
		items = append(items, backend.OrderItem{
			ProductID:       line.ID,
			SelectedColorID: line.SelectedColorID,
			Quantity:        line.Quantity,
		})
	}
	order, err := s.backend.CreateOrder(ctx, backend.CreateOrderInput{
		CustomerEmail:   input.CustomerEmail,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		Payment:         "razorpay",
	})
	if err != nil {
		s.fail(ctx, attempt, err, "order creation failed")
		return nil, err
	}
	attempt.OrderID = order.ID
	attempt.AmountMinor = order.AmountMinor
	attempt.Currency = order.Currency
	if attempt.Currency == "" {
		attempt.Currency = s.gateway.Currency()
	}
	if err := attempt.transition(StateOrderCreated); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "order_created")

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, razorpay.OrderParams{
		AmountMinor: attempt.AmountMinor,
		Currency:    attempt.Currency,
		Receipt:     order.ID,
		Notes:       map[string]string{"attempt_id": attempt.ID},
	})
	if err != nil {
		s.fail(ctx, attempt, err, "gateway order creation failed")
		return nil, err
	}
	attempt.GatewayOrderID = gatewayOrderID
	if err := attempt.transition(StateGatewayCreated); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "gateway_created")

	if err := attempt.transition(StateAwaitingPayment); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "awaiting_payment")

	return &Session{
		AttemptID:      attempt.ID,
		GatewayKeyID:   s.gateway.KeyID(),
		GatewayOrderID: attempt.GatewayOrderID,
		AmountMinor:    attempt.AmountMinor,
		Currency:       attempt.Currency,
	}, nil
}

// SuccessPayload carries the gateway identifiers from a completed payment.
type SuccessPayload struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// FailurePayload is the gateway's coded payment error.
type FailurePayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

// CompleteInput classifies the gateway callback. Both payloads absent means
// the shopper dismissed the hosted checkout.
type CompleteInput struct {
	AttemptID string
	Success   *SuccessPayload
	Failure   *FailurePayload
}

// Outcome is the resolved fate of an attempt.
type Outcome struct {
	State   State  `json:"state"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

// Complete resolves an awaiting_payment attempt from the gateway callback.
// Dismissal and coded failure are distinct branches: a decline shown as
// "cancelled" (or the reverse) would mislead the shopper. Verification is
// never retried because the gateway may already hold the charge.
func (s *Service) Complete(ctx context.Context, input CompleteInput) (*Outcome, error) {
	attempt, err := s.attempts.Find(ctx, input.AttemptID)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		ctx = s.logger.WithAttemptID(ctx, attempt.ID)
	}
	if attempt.State != StateAwaitingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"checkout attempt is already resolved as "+string(attempt.State))
	}

	switch {
	case input.Success != nil:
		return s.verify(ctx, attempt, input.Success)
	case input.Failure != nil:
		return s.resolveFailed(ctx, attempt, input.Failure)
	default:
		return s.resolveCancelled(ctx, attempt)
	}
}

func (s *Service) verify(ctx context.Context, attempt *Attempt, payload *SuccessPayload) (*Outcome, error) {
	if err := attempt.transition(StateVerifying); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "verifying")

	if payload.RazorpayOrderID != attempt.GatewayOrderID {
		return s.verificationFailed(ctx, attempt, "gateway order id mismatch")
	}
	if !s.gateway.VerifyPaymentSignature(payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature) {
		return s.verificationFailed(ctx, attempt, "payment signature mismatch")
	}
	if err := s.backend.ConfirmPayment(ctx, backend.ConfirmPaymentInput{
		OrderID:           attempt.OrderID,
		RazorpayOrderID:   payload.RazorpayOrderID,
		RazorpayPaymentID: payload.RazorpayPaymentID,
		RazorpaySignature: payload.RazorpaySignature,
	}); err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "checkout.confirm_payment_failed", err)
		}
		return s.verificationFailed(ctx, attempt, "payment confirmation failed")
	}

	if err := attempt.transition(StateComplete); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "complete")
	return &Outcome{
		State:   StateComplete,
		OrderID: attempt.OrderID,
		Message: "payment confirmed",
	}, nil
}

func (s *Service) verificationFailed(ctx context.Context, attempt *Attempt, reason string) (*Outcome, error) {
	attempt.FailureMessage = reason
	if err := attempt.transition(StateVerificationFailed); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "verification_failed")
	return &Outcome{
		State:   StateVerificationFailed,
		OrderID: attempt.OrderID,
		Message: "your payment could not be confirmed; please contact support before paying again",
	}, nil
}

func (s *Service) resolveFailed(ctx context.Context, attempt *Attempt, payload *FailurePayload) (*Outcome, error) {
	attempt.FailureCode = payload.Code
	attempt.FailureMessage = payload.Description
	if attempt.FailureMessage == "" {
		attempt.FailureMessage = payload.Message
	}
	if err := attempt.transition(StateFailed); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "failed")
	message := attempt.FailureMessage
	if message == "" {
		message = "payment was declined by the gateway"
	}
	return &Outcome{State: StateFailed, OrderID: attempt.OrderID, Message: message}, nil
}

func (s *Service) resolveCancelled(ctx context.Context, attempt *Attempt) (*Outcome, error) {
	if err := attempt.transition(StateCancelled); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}
	s.analytics.CheckoutStage(ctx, "cancelled")
	return &Outcome{
		State:   StateCancelled,
		OrderID: attempt.OrderID,
		Message: "payment cancelled",
	}, nil
}

// fail records a terminal failure for attempts that never reached the
// gateway. Storage errors here are logged and swallowed so the original
// failure stays the one the caller sees.
func (s *Service) fail(ctx context.Context, attempt *Attempt, cause error, message string) {
	attempt.FailureMessage = message
	if coded := pkgerrors.As(cause); coded != nil {
		attempt.FailureCode = string(coded.Code())
	}
	attempt.State = StateFailed
	if err := s.attempts.Save(ctx, attempt); err != nil && s.logger != nil {
		s.logger.Error(ctx, "checkout.attempt_save_failed", err)
	}
	s.analytics.CheckoutStage(ctx, "failed")
}
