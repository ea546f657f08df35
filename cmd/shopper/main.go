package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/lib/myhttpclient"
	"github.com/MarcGrol/canpayshop/lib/mylocalstorage"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/lib/mytime"
	"github.com/MarcGrol/canpayshop/lib/myuuid"
	"github.com/MarcGrol/canpayshop/services/cart"
	"github.com/MarcGrol/canpayshop/services/checkout"
	"github.com/MarcGrol/canpayshop/services/shop"
)

var logger = mylog.New("shopper")

type Config struct {
	ServerURL              string          `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	TipAmount              decimal.Decimal `envconfig:"TIP_AMOUNT" default:"0"`
	DeliveryFee            decimal.Decimal `envconfig:"DELIVERY_FEE" default:"0"`
	SplitFundingMerchantID string          `envconfig:"SPLIT_FUNDING_MERCHANT_ID"`
	IsGuest                bool            `envconfig:"IS_GUEST" default:"true"`
	ResultTimeout          time.Duration   `envconfig:"RESULT_TIMEOUT" default:"10m"`
	RequestTimeout         time.Duration   `envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

// shopper is a terminal storefront: the cart lives in local storage and the widget is played by the user.
func main() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_ = godotenv.Load(".env")

	cfg := Config{}
	err := envconfig.Process("SHOPPER", &cfg)
	if err != nil {
		fatalf(c, "Error reading shopper config: %s", err)
	}
	storageCfg := mylocalstorage.Config{}
	err = envconfig.Process("CART", &storageCfg)
	if err != nil {
		fatalf(c, "Error reading cart storage config: %s", err)
	}

	storage, storageCleanup, err := mylocalstorage.New(c, storageCfg)
	if err != nil {
		fatalf(c, "Error opening cart storage: %s", err)
	}
	defer storageCleanup()

	in := bufio.NewScanner(os.Stdin)
	session := newSession(c, cfg, storage, &terminalWidget{in: in, out: os.Stdout})
	defer session.Close()

	run(c, session, in, os.Stdout)
}

func newSession(c context.Context, cfg Config, storage mylocalstorage.Storage, widget checkout.Widget) *shop.Session {
	cartStore := cart.New(c, storage)
	client := checkout.NewClient(cfg.ServerURL, myhttpclient.New("shop", cfg.RequestTimeout))
	orchestrator := checkout.NewOrchestrator(checkout.Config{
		TipAmount:              cfg.TipAmount,
		DeliveryFee:            cfg.DeliveryFee,
		SplitFundingMerchantID: cfg.SplitFundingMerchantID,
		IsGuest:                cfg.IsGuest,
		ResultTimeout:          cfg.ResultTimeout,
	}, cartStore, client, widget, client, myuuid.RealUUIDer{}, mytime.RealNower{})

	return shop.NewSession(cartStore, orchestrator)
}

func run(c context.Context, session *shop.Session, in *bufio.Scanner, out io.Writer) {
	printCart(out, session.Cart().Summary())
	fmt.Fprint(out, "> ")

	for in.Scan() {
		if c.Err() != nil {
			return
		}

		line := in.Text()
		intent, err := parseCommand(line)
		switch {
		case errors.Is(err, errQuit):
			return
		case errors.Is(err, errShowCart):
			printCart(out, session.Cart().Summary())
		case errors.Is(err, errEmptyLine):
		case err != nil:
			fmt.Fprintf(out, "%s\n%s", err, usage)
		default:
			notice, err := session.Dispatch(c, intent)
			if err != nil {
				logger.Log(c, "", mylog.SeverityWarn, "%s failed: %s", line, err)
			}
			if notice.Message != "" {
				fmt.Fprintln(out, notice.Message)
			}
			printCart(out, notice.Summary)
		}
		fmt.Fprint(out, "> ")
	}
}

func printCart(out io.Writer, summary cart.Summary) {
	for _, item := range summary.Items {
		fmt.Fprintf(out, "  %-24s %3d x %8s = %8s\n", item.ID, item.Quantity, item.UnitPrice.StringFixed(2),
			item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(out, "Cart: %d item(s), total $%s\n", summary.ItemCount, summary.Total.StringFixed(2))
}

func fatalf(c context.Context, format string, args ...any) {
	logger.Log(c, "", mylog.SeverityError, format, args...)
	os.Exit(1)
}
