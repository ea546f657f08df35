package cart

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DefaultVariant = "Default"
	storageKey     = "cartItems"
)

// LineItem is one product+variant configuration. The json names are the persisted format.
type LineItem struct {
	ID        string          `json:"id" validate:"required"`
	ProductID string          `json:"productId" validate:"required"`
	Title     string          `json:"title"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	ImageRef  string          `json:"image"`
}

func NewLineItem(productID, title, variant string, unitPrice decimal.Decimal, quantity int, imageRef string) LineItem {
	if variant == "" {
		variant = DefaultVariant
	}
	return LineItem{
		ID:        ItemID(productID, variant),
		ProductID: productID,
		Title:     title,
		Variant:   variant,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		ImageRef:  imageRef,
	}
}

func ItemID(productID, variant string) string {
	return fmt.Sprintf("%s-%s", productID, variant)
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Summary is what a view renders after every change.
type Summary struct {
	Items     []LineItem
	Total     decimal.Decimal
	ItemCount int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (i LineItem) Validate() error {
	return validate.Struct(i)
}
