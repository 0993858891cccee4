package types

import (
	"fmt"
	"strings"
)

// ShippingAddress is the destination captured on the checkout form and
// forwarded verbatim to the commerce backend with the order.
type ShippingAddress struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Phone      *string `json:"phone,omitempty"`
}

// Validate applies the minimal completeness check used outside the HTTP
// decoding path.
func (a ShippingAddress) Validate() error {
	for field, value := range map[string]string{
		"line1":       a.Line1,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("shipping address: missing %s", field)
		}
	}
	return nil
}
