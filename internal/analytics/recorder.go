package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/metrics"
)

// ItemEvent captures the cart line a shopper acted on.
type ItemEvent struct {
	ProductID       string
	SelectedColorID *string
	Quantity        int
	Price           decimal.Decimal
}

// Recorder publishes shopper activity. Events are emitted as structured log
// lines plus prometheus counters; they are advisory and must never block or
// fail a mutation.
type Recorder interface {
	CartItemAdded(ctx context.Context, event ItemEvent)
	CartItemRemoved(ctx context.Context, event ItemEvent)
	WishlistToggled(ctx context.Context, productID string, added bool)
	CheckoutStage(ctx context.Context, stage string)
}

type recorder struct {
	logger  *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewRecorder builds the default recorder. Both dependencies are optional;
// a nil logger silences log output and a nil metrics drops counters.
func NewRecorder(logg *logger.Logger, m *metrics.StorefrontMetrics) Recorder {
	return &recorder{logger: logg, metrics: m}
}

func (r *recorder) CartItemAdded(ctx context.Context, event ItemEvent) {
	r.metrics.IncCartMutation("add")
	r.logItem(ctx, "analytics.cart_item_added", event)
}

func (r *recorder) CartItemRemoved(ctx context.Context, event ItemEvent) {
	r.metrics.IncCartMutation("remove")
	r.logItem(ctx, "analytics.cart_item_removed", event)
}

func (r *recorder) WishlistToggled(ctx context.Context, productID string, added bool) {
	outcome := "removed"
	if added {
		outcome = "added"
	}
	r.metrics.IncWishlistToggle(outcome)
	if r.logger == nil {
		return
	}
	ctx = r.logger.WithFields(ctx, map[string]any{
		"product_id": productID,
		"outcome":    outcome,
	})
	r.logger.Info(ctx, "analytics.wishlist_toggled")
}

func (r *recorder) CheckoutStage(ctx context.Context, stage string) {
	r.metrics.IncCheckoutStage(stage)
	if r.logger == nil {
		return
	}
	ctx = r.logger.WithField(ctx, "stage", stage)
	r.logger.Info(ctx, "analytics.checkout_stage")
}

func (r *recorder) logItem(ctx context.Context, msg string, event ItemEvent) {
	if r.logger == nil {
		return
	}
	fields := map[string]any{
		"product_id": event.ProductID,
		"quantity":   event.Quantity,
		"price":      event.Price.String(),
	}
	if event.SelectedColorID != nil {
		fields["selected_color_id"] = *event.SelectedColorID
	}
	ctx = r.logger.WithFields(ctx, fields)
	r.logger.Info(ctx, msg)
}
