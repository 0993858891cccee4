package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/maisonvelaire/storefront-backend/pkg/config"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
)

var (
	errCredentialsRequired = errors.New("razorpay key id and secret are required")
	errLoggerRequired      = errors.New("razorpay logger is required")
)

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK with centralized logging, redaction, and
// error mapping. Only the order and signature surfaces are exposed; the
// hosted checkout modal itself runs in the browser against the gateway.
type Client struct {
	orders    orderCreator
	keyID     string
	keySecret string
	currency  string
	logger    *logger.Logger
}

// NewClient validates the credentials and initializes the SDK wrapper.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errCredentialsRequired
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	sdk := razorpay.NewClient(keyID, keySecret)
	if secs := timeoutSeconds(cfg.Timeout); secs > 0 {
		sdk.SetTimeout(int16(secs))
	}

	c := &Client{
		orders:    sdk.Order,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// timeoutSeconds converts the configured timeout to the whole seconds the
// gateway SDK accepts. Sub-second values round up to one second so a
// configured timeout never degrades to "no timeout".
func timeoutSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	secs := int64(d / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// KeyID returns the publishable key the browser checkout needs.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// OrderParams describes a gateway order to create.
type OrderParams struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// CreateOrder registers the amount with the gateway and returns the gateway
// order id the hosted checkout is keyed by.
func (c *Client) CreateOrder(ctx context.Context, params OrderParams) (string, error) {
	if params.AmountMinor <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "gateway amount must be positive")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = c.currency
	}

	data := map[string]interface{}{
		"amount":   params.AmountMinor,
		"currency": currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		notes := map[string]interface{}{}
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountMinor,
		"currency": currency,
		"receipt":  params.Receipt,
	})

	body, err := c.orders.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay create order failed")
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "razorpay returned order without id")
	}

	c.log(ctx, "response", "create_order", map[string]any{"gateway_order_id": orderID})
	return orderID, nil
}

// VerifyPaymentSignature checks the HMAC the gateway attached to a successful
// payment. A mismatch means the success callback cannot be trusted.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
	}, signature, c.keySecret)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "signature", "token", "email", "phone", "card"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
