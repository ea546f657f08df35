package myhttp

import (
	"errors"
)

type publicMessager interface {
	PublicMessage() string
}

// PublicMessage returns the shopper-safe text of an error: the message of the first error in the chain
// that offers one, the plain error text otherwise.
func PublicMessage(err error) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		return pm.PublicMessage()
	}
	return err.Error()
}
