package cart

// AddItemRequest adds one unit of a product, optionally in a chosen color.
type AddItemRequest struct {
	ProductID       string  `json:"product_id" validate:"required"`
	SelectedColorID *string `json:"selected_color_id,omitempty"`
}

// SetQuantityRequest replaces the quantity on one cart line. Zero removes
// the line.
type SetQuantityRequest struct {
	ProductID       string  `json:"product_id" validate:"required"`
	SelectedColorID *string `json:"selected_color_id,omitempty"`
	Quantity        int     `json:"quantity" validate:"gte=0"`
}
