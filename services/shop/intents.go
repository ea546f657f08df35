package shop

import (
	"github.com/shopspring/decimal"
)

// Intent is something the shopper asked for through the view.
type Intent interface {
	intentName() string
}

// AddItem is "buy now" for a product, using the variant selected earlier for that product.
type AddItem struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
}

type RemoveItem struct {
	ItemID string
}

type SetQuantity struct {
	ItemID   string
	Quantity int
}

// SelectVariant only changes what the next AddItem for the product uses, never the cart.
type SelectVariant struct {
	ProductID string
	Variant   string
	ImageRef  string
}

type Checkout struct{}

func (AddItem) intentName() string       { return "add-item" }
func (RemoveItem) intentName() string    { return "remove-item" }
func (SetQuantity) intentName() string   { return "set-quantity" }
func (SelectVariant) intentName() string { return "select-variant" }
func (Checkout) intentName() string      { return "checkout" }
