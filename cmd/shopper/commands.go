package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/services/shop"
)

const usage = `commands:
  add <product-id> <price> [quantity] [title...]
  variant <product-id> <variant> [image]
  qty <item-id> <quantity>
  remove <item-id>
  cart
  checkout
  quit
`

var (
	errQuit      = errors.New("quit")
	errShowCart  = errors.New("show cart")
	errEmptyLine = errors.New("empty line")
)

// parseCommand turns a terminal line into a shop intent. Lines that are handled by the
// terminal itself come back as one of the err* sentinels.
func parseCommand(line string) (shop.Intent, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errEmptyLine
	}

	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return nil, errQuit
	case "cart":
		return nil, errShowCart
	case "checkout":
		return shop.Checkout{}, nil
	case "add":
		return parseAdd(args)
	case "variant":
		if len(args) < 2 {
			return nil, fmt.Errorf("variant needs a product id and a variant")
		}
		i := shop.SelectVariant{ProductID: args[0], Variant: args[1]}
		if len(args) > 2 {
			i.ImageRef = args[2]
		}
		return i, nil
	case "qty":
		if len(args) != 2 {
			return nil, fmt.Errorf("qty needs an item id and a quantity")
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", args[1])
		}
		return shop.SetQuantity{ItemID: args[0], Quantity: quantity}, nil
	case "remove":
		if len(args) != 1 {
			return nil, fmt.Errorf("remove needs an item id")
		}
		return shop.RemoveItem{ItemID: args[0]}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseAdd(args []string) (shop.Intent, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("add needs a product id and a price")
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", args[1])
	}

	i := shop.AddItem{ProductID: args[0], Title: args[0], UnitPrice: price, Quantity: 1}
	if len(args) > 2 {
		i.Quantity, err = strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", args[2])
		}
	}
	if len(args) > 3 {
		i.Title = strings.Join(args[3:], " ")
	}
	return i, nil
}
