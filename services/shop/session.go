package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/services/cart"
	"github.com/MarcGrol/canpayshop/services/checkout"
)

const productNotFoundMessage = "Error: Product not found. Please try again."

// Notice is what the view shows after handling an intent.
type Notice struct {
	Message string
	Outcome checkout.Outcome
	Summary cart.Summary
}

type selection struct {
	variant  string
	imageRef string
}

// Session binds one cart to one checkout orchestrator for the lifetime of a shopper session.
type Session struct {
	sync.Mutex
	logger       mylog.Logger
	cart         *cart.Store
	orchestrator *checkout.Orchestrator
	selections   map[string]selection
}

func NewSession(cartStore *cart.Store, orchestrator *checkout.Orchestrator) *Session {
	return &Session{
		logger:       mylog.New("shop"),
		cart:         cartStore,
		orchestrator: orchestrator,
		selections:   map[string]selection{},
	}
}

func (s *Session) Cart() *cart.Store {
	return s.cart
}

// Close abandons a checkout that is still waiting for the widget.
func (s *Session) Close() {
	s.orchestrator.Abandon()
}

func (s *Session) Dispatch(c context.Context, intent Intent) (Notice, error) {
	s.logger.Log(c, "", mylog.SeverityDebug, "Dispatching %s", intent.intentName())

	switch i := intent.(type) {
	case AddItem:
		return s.addItem(c, i)
	case RemoveItem:
		return s.withSummary(s.cart.Remove(c, i.ItemID))
	case SetQuantity:
		return s.withSummary(s.cart.SetQuantity(c, i.ItemID, i.Quantity))
	case SelectVariant:
		s.selectVariant(i)
		return s.withSummary(nil)
	case Checkout:
		return s.checkout(c)
	default:
		return Notice{}, myerrors.NewNotImplementedError(fmt.Errorf("unsupported intent %T", intent))
	}
}

func (s *Session) addItem(c context.Context, i AddItem) (Notice, error) {
	if i.ProductID == "" {
		return Notice{Message: productNotFoundMessage, Summary: s.cart.Summary()}, myerrors.NewInvalidInputErrorf("missing product id")
	}

	sel := s.selectionFor(i.ProductID)
	imageRef := i.ImageRef
	if sel.imageRef != "" {
		imageRef = sel.imageRef
	}
	quantity := i.Quantity
	if quantity == 0 {
		quantity = 1
	}

	err := s.cart.AddOrReplaceSingleItem(c, cart.NewLineItem(i.ProductID, i.Title, sel.variant, i.UnitPrice, quantity, imageRef))
	if err != nil {
		return Notice{Message: productNotFoundMessage, Summary: s.cart.Summary()}, err
	}
	return s.withSummary(nil)
}

func (s *Session) selectVariant(i SelectVariant) {
	s.Lock()
	defer s.Unlock()

	s.selections[i.ProductID] = selection{
		variant:  i.Variant,
		imageRef: i.ImageRef,
	}
}

func (s *Session) selectionFor(productID string) selection {
	s.Lock()
	defer s.Unlock()

	sel, found := s.selections[productID]
	if !found || sel.variant == "" {
		sel.variant = cart.DefaultVariant
	}
	return sel
}

func (s *Session) checkout(c context.Context) (Notice, error) {
	outcome, err := s.orchestrator.Checkout(c)
	if errors.Is(err, checkout.ErrCheckoutInProgress) {
		// The button is disabled while an attempt runs, nothing to tell.
		return Notice{Summary: s.cart.Summary()}, nil
	}
	if errors.Is(err, checkout.ErrEmptyCart) {
		err = nil
	}
	return Notice{
		Message: outcome.UserMessage(),
		Outcome: outcome,
		Summary: s.cart.Summary(),
	}, err
}

func (s *Session) withSummary(err error) (Notice, error) {
	return Notice{Summary: s.cart.Summary()}, err
}
