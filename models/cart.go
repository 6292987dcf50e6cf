package models

// CartLine is one (product reference, quantity) pair inside a cart. The
// product field holds a Product ID, not an owned copy; deleting the product
// does not touch existing lines.
type CartLine struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Cart holds at most one line per distinct product id.
type Cart struct {
	ID       string     `json:"id"`
	Products []CartLine `json:"products"`
}

// LineIndex returns the index of the line referencing productID, or -1.
func (c *Cart) LineIndex(productID string) int {
	for i, line := range c.Products {
		if line.Product == productID {
			return i
		}
	}
	return -1
}
