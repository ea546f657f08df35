package mystore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payment struct {
	TransactionID string
	Status        string
}

func TestInMemoryStore(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := NewInMemoryStore[payment](c)
	require.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := store.Get(c, "tx_1")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		assert.NoError(t, store.Put(c, "tx_1", payment{TransactionID: "tx_1", Status: "processed"}))
		assert.NoError(t, store.Put(c, "tx_2", payment{TransactionID: "tx_2", Status: "pending"}))
	})

	t.Run("Get found", func(t *testing.T) {
		p, found, err := store.Get(c, "tx_1")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, payment{TransactionID: "tx_1", Status: "processed"}, p)
	})

	t.Run("Overwrite keeps position", func(t *testing.T) {
		assert.NoError(t, store.Put(c, "tx_1", payment{TransactionID: "tx_1", Status: "failed"}))

		all, err := store.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []payment{{TransactionID: "tx_1", Status: "failed"}, {TransactionID: "tx_2", Status: "pending"}}, all)
	})

	t.Run("Transaction", func(t *testing.T) {
		err := store.RunInTransaction(c, func(c context.Context) error {
			p, found, err := store.Get(c, "tx_2")
			if err != nil || !found {
				return fmt.Errorf("tx_2 missing")
			}
			p.Status = "processed"
			return store.Put(c, "tx_2", p)
		})
		assert.NoError(t, err)

		p, _, _ := store.Get(c, "tx_2")
		assert.Equal(t, "processed", p.Status)
	})

	t.Run("Transaction error is returned", func(t *testing.T) {
		err := store.RunInTransaction(c, func(c context.Context) error {
			return fmt.Errorf("boom")
		})
		assert.EqualError(t, err, "boom")
	})
}
