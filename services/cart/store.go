package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/mylocalstorage"
	"github.com/MarcGrol/canpayshop/lib/mylog"
)

// Store owns the line items of one shopper session. Totals are always derived from the items.
type Store struct {
	sync.Mutex
	logger    mylog.Logger
	storage   mylocalstorage.Storage
	items     []LineItem
	listeners []func(Summary)
}

// New restores the previously persisted cart, an unusable stored value results in an empty cart.
func New(c context.Context, storage mylocalstorage.Storage) *Store {
	s := &Store{
		logger:  mylog.New("cart"),
		storage: storage,
		items:   []LineItem{},
	}
	s.Restore(c)
	return s
}

// Subscribe registers a listener that receives a fresh summary after every mutation.
func (s *Store) Subscribe(listener func(Summary)) {
	s.Lock()
	defer s.Unlock()

	s.listeners = append(s.listeners, listener)
}

// AddOrReplaceSingleItem implements "buy now": the cart ends up with exactly this item.
func (s *Store) AddOrReplaceSingleItem(c context.Context, item LineItem) error {
	err := item.Validate()
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("invalid line item %s: %w", item.ID, err))
	}

	return s.mutate(c, func() bool {
		s.items = []LineItem{item}
		s.logger.Log(c, item.ID, mylog.SeverityInfo, "Cart now holds %d x %s", item.Quantity, item.ID)
		return true
	})
}

func (s *Store) Remove(c context.Context, itemID string) error {
	return s.mutate(c, func() bool {
		idx := s.indexOf(itemID)
		if idx < 0 {
			s.logger.Log(c, itemID, mylog.SeverityDebug, "Remove: item %s not in cart", itemID)
			return false
		}
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		return true
	})
}

// SetQuantity with a quantity of zero or less removes the item. Unknown ids are ignored.
func (s *Store) SetQuantity(c context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(c, itemID)
	}

	return s.mutate(c, func() bool {
		idx := s.indexOf(itemID)
		if idx < 0 {
			s.logger.Log(c, itemID, mylog.SeverityInfo, "SetQuantity: item %s not in cart", itemID)
			return false
		}
		s.items[idx].Quantity = quantity
		return true
	})
}

func (s *Store) Clear(c context.Context) error {
	return s.mutate(c, func() bool {
		s.items = []LineItem{}
		return true
	})
}

func (s *Store) Items() []LineItem {
	s.Lock()
	defer s.Unlock()

	return s.copyItems()
}

func (s *Store) Total() decimal.Decimal {
	s.Lock()
	defer s.Unlock()

	return total(s.items)
}

func (s *Store) ItemCount() int {
	s.Lock()
	defer s.Unlock()

	return itemCount(s.items)
}

func (s *Store) Summary() Summary {
	s.Lock()
	defer s.Unlock()

	return s.summary()
}

func (s *Store) Persist(c context.Context) error {
	s.Lock()
	defer s.Unlock()

	return s.persist(c)
}

// Restore replaces the in-memory items with the persisted ones. Missing or corrupt state is not an error:
// the cart becomes empty and items that no longer validate are dropped.
func (s *Store) Restore(c context.Context) {
	s.Lock()
	defer s.Unlock()

	s.items = s.load(c)
}

func (s *Store) load(c context.Context) []LineItem {
	data, found, err := s.storage.Get(c, storageKey)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Error reading stored cart, starting empty: %s", err)
		return []LineItem{}
	}
	if !found {
		return []LineItem{}
	}

	stored := []LineItem{}
	err = json.Unmarshal(data, &stored)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Stored cart is corrupt, starting empty: %s", err)
		return []LineItem{}
	}

	items := make([]LineItem, 0, len(stored))
	seen := map[string]bool{}
	for _, item := range stored {
		if item.Validate() != nil || seen[item.ID] {
			s.logger.Log(c, item.ID, mylog.SeverityWarn, "Dropping unusable stored item %q", item.ID)
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items
}

func (s *Store) mutate(c context.Context, f func() bool) error {
	s.Lock()
	changed := f()
	if !changed {
		s.Unlock()
		return nil
	}
	err := s.persist(c)
	summary := s.summary()
	listeners := append([]func(Summary){}, s.listeners...)
	s.Unlock()

	for _, l := range listeners {
		l(summary)
	}

	return err
}

func (s *Store) persist(c context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error serializing cart: %w", err))
	}

	err = s.storage.Put(c, storageKey, data)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error persisting cart: %s", err)
		return myerrors.NewInternalError(err)
	}
	return nil
}

func (s *Store) summary() Summary {
	return Summary{
		Items:     s.copyItems(),
		Total:     total(s.items),
		ItemCount: itemCount(s.items),
	}
}

func (s *Store) copyItems() []LineItem {
	return append([]LineItem{}, s.items...)
}

func (s *Store) indexOf(itemID string) int {
	for idx, item := range s.items {
		if item.ID == itemID {
			return idx
		}
	}
	return -1
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

func itemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
