package domain

// Product is a catalog entry as served by the commerce backend.
// Fetched fresh on every read, never cached locally.
type Product struct {
	ID             string
	Name           string
	Description    string
	FormattedPrice string
	StockLevel     int
	MainImageID    string
}

// CartItem is one line of a cart. Prices arrive pre-formatted from the
// backend and are passed through to the user as-is.
type CartItem struct {
	ID        string
	Name      string
	Quantity  int
	UnitPrice string
	LinePrice string
}

// Cart is the backend-owned cart for one chat. The cart id is the chat
// id, so cart and conversation state share an identity.
type Cart struct {
	Items          []CartItem
	FormattedTotal string
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Customer is a backend customer record resolved during checkout.
type Customer struct {
	ID    string
	Name  string
	Email string
}
