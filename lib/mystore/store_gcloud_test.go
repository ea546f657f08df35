package mystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, "payment", kindOf[payment]())
	assert.Equal(t, "string", kindOf[string]())
}
