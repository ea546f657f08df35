package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/lib/mytime"
	"github.com/MarcGrol/canpayshop/lib/myuuid"
	"github.com/MarcGrol/canpayshop/services/cart"
)

var (
	ErrCheckoutInProgress  = errors.New("checkout already in progress")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrAttemptAbandoned    = errors.New("checkout attempt abandoned")
	ErrIntentValidation    = errors.New("widget rejected intent")
	ErrPaymentNotProcessed = errors.New("payment not processed")
)

// Cart is the part of the cart store that checkout depends on.
type Cart interface {
	Items() []cart.LineItem
	Total() decimal.Decimal
	Clear(c context.Context) error
}

type Config struct {
	TipAmount              decimal.Decimal
	DeliveryFee            decimal.Decimal
	SplitFundingMerchantID string
	IsGuest                bool
	// ResultTimeout bounds the wait for the widget, zero waits until the attempt is abandoned.
	ResultTimeout time.Duration
}

// Orchestrator runs checkout attempts for a single cart, one at a time.
type Orchestrator struct {
	sync.Mutex
	cfg         Config
	cart        Cart
	intents     IntentCreator
	widget      Widget
	verifier    PaymentVerifier
	uuider      myuuid.UUIDer
	nower       mytime.Nower
	logger      mylog.Logger
	state       State
	intent      *Intent
	abandon     chan struct{}
	sideChannel []SideChannelEvent
}

func NewOrchestrator(cfg Config, cart Cart, intents IntentCreator, widget Widget, verifier PaymentVerifier, uuider myuuid.UUIDer, nower mytime.Nower) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		cart:     cart,
		intents:  intents,
		widget:   widget,
		verifier: verifier,
		uuider:   uuider,
		nower:    nower,
		logger:   mylog.New("checkout"),
		state:    StateIdle,
	}
}

func (o *Orchestrator) State() State {
	o.Lock()
	defer o.Unlock()

	return o.state
}

// CurrentIntent returns the intent of the latest attempt, if it got that far.
func (o *Orchestrator) CurrentIntent() (Intent, bool) {
	o.Lock()
	defer o.Unlock()

	if o.intent == nil {
		return Intent{}, false
	}
	return *o.intent, true
}

func (o *Orchestrator) SideChannelEvents() []SideChannelEvent {
	o.Lock()
	defer o.Unlock()

	return append([]SideChannelEvent{}, o.sideChannel...)
}

// Abandon ends the wait of an in-flight attempt, as when the shopper navigates away.
func (o *Orchestrator) Abandon() {
	o.Lock()
	defer o.Unlock()

	if o.abandon != nil {
		close(o.abandon)
		o.abandon = nil
	}
}

// Checkout runs one attempt to completion. A second call while an attempt is in flight is rejected without
// side effects.
func (o *Orchestrator) Checkout(c context.Context) (Outcome, error) {
	items, abandon, err := o.start(c)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			return OutcomeEmptyCart, err
		}
		return OutcomeNone, err
	}

	outcome, err := o.run(c, items, abandon)
	if err != nil {
		o.logger.Log(c, o.traceLabel(), mylog.SeverityWarn, "Checkout failed (%s): %s", outcome, err)
		o.moveTo(c, StateFailed)
		return outcome, err
	}

	return outcome, nil
}

func (o *Orchestrator) start(c context.Context) ([]cart.LineItem, chan struct{}, error) {
	o.Lock()
	defer o.Unlock()

	if o.state.InFlight() {
		o.logger.Log(c, "", mylog.SeverityInfo, "Ignoring checkout while in state %s", o.state)
		return nil, nil, ErrCheckoutInProgress
	}

	items := o.cart.Items()
	if len(items) == 0 {
		o.logger.Log(c, "", mylog.SeverityInfo, "Ignoring checkout of empty cart")
		return nil, nil, ErrEmptyCart
	}

	o.transition(c, StateIntentRequested)
	o.intent = nil
	o.abandon = make(chan struct{})

	return items, o.abandon, nil
}

func (o *Orchestrator) run(c context.Context, items []cart.LineItem, abandon chan struct{}) (Outcome, error) {
	amount := o.cart.Total()

	intentID, err := o.intents.CreateIntent(c, amount, o.cfg.DeliveryFee, o.cfg.SplitFundingMerchantID)
	if err != nil {
		return OutcomeServiceFailure, fmt.Errorf("error creating intent: %w", err)
	}
	intent := Intent{
		IntentID:  intentID,
		Amount:    amount,
		CreatedAt: o.nower.Now(),
	}

	o.Lock()
	o.intent = &intent
	o.transition(c, StateWidgetLaunched)
	o.Unlock()

	l := newLatch()
	err = o.widget.Launch(c, o.launchConfig(c, intent, items, l))
	if err != nil {
		l.close()
		return OutcomeServiceFailure, fmt.Errorf("error launching widget: %w", err)
	}
	o.moveTo(c, StateAwaitingResult)

	result, err := o.awaitResult(c, l, abandon)
	if err != nil {
		return OutcomeServiceFailure, err
	}
	if result.validationFailure != nil {
		return OutcomeServiceFailure, fmt.Errorf("%w: %s", ErrIntentValidation, result.validationFailure.Message)
	}

	o.moveTo(c, StateVerifying)

	return o.verify(c, *result.payment)
}

func (o *Orchestrator) launchConfig(c context.Context, intent Intent, items []cart.LineItem, l *latch) LaunchConfig {
	return LaunchConfig{
		IntentID:        intent.IntentID,
		Amount:          intent.Amount.StringFixed(2),
		TipAmount:       o.cfg.TipAmount.StringFixed(2),
		DeliveryFee:     o.cfg.DeliveryFee.StringFixed(2),
		IsGuest:         o.cfg.IsGuest,
		MerchantOrderID: o.uuider.Create(),
		Passthrough: Passthrough{
			CartItems: items,
		},
		ProcessedCallback: func(result PaymentResult) {
			if !l.resolve(widgetResult{payment: &result}) {
				o.logger.Log(c, intent.IntentID, mylog.SeverityWarn, "Ignoring processed callback: attempt already resolved")
			}
		},
		IntentIDValidationCallback: func(failure ValidationFailure) {
			if !l.resolve(widgetResult{validationFailure: &failure}) {
				o.logger.Log(c, intent.IntentID, mylog.SeverityWarn, "Ignoring validation callback: attempt already resolved")
			}
		},
		LoginCallback: func(payload string) {
			o.recordSideChannel(c, SideChannelLogin, payload)
		},
		LinkCallback: func(payload string) {
			o.recordSideChannel(c, SideChannelLink, payload)
		},
	}
}

func (o *Orchestrator) awaitResult(c context.Context, l *latch, abandon chan struct{}) (widgetResult, error) {
	var timeout <-chan time.Time
	if o.cfg.ResultTimeout > 0 {
		timer := time.NewTimer(o.cfg.ResultTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case result := <-l.results:
		return result, nil
	case <-c.Done():
		l.close()
		return widgetResult{}, fmt.Errorf("%w: %w", ErrAttemptAbandoned, c.Err())
	case <-abandon:
		l.close()
		return widgetResult{}, ErrAttemptAbandoned
	case <-timeout:
		l.close()
		return widgetResult{}, fmt.Errorf("%w: no widget result within %s", ErrAttemptAbandoned, o.cfg.ResultTimeout)
	}
}

// verify trusts nothing the widget said: only a verified payload with a processed status clears the cart.
func (o *Orchestrator) verify(c context.Context, result PaymentResult) (Outcome, error) {
	tx, err := o.verifier.VerifyPayment(c, result.RawPayload, result.Signature)
	if err != nil {
		switch myerrors.GetHTTPStatus(err) {
		case http.StatusBadRequest, http.StatusForbidden:
			return OutcomeVerificationFailed, fmt.Errorf("error verifying payment: %w", err)
		default:
			return OutcomeServiceFailure, fmt.Errorf("error verifying payment: %w", err)
		}
	}
	if !tx.Processed() {
		return OutcomeVerificationFailed, fmt.Errorf("%w: status %q", ErrPaymentNotProcessed, tx.Status)
	}

	err = o.cart.Clear(c)
	if err != nil {
		o.logger.Log(c, o.traceLabel(), mylog.SeverityError, "Payment %s succeeded but cart was not cleared: %s", tx.TransactionID, err)
	}

	o.moveTo(c, StateSucceeded)
	o.logger.Log(c, o.traceLabel(), mylog.SeverityInfo, "Checkout succeeded with transaction %s", tx.TransactionID)

	return OutcomeSucceeded, nil
}

func (o *Orchestrator) recordSideChannel(c context.Context, kind SideChannelKind, payload string) {
	o.Lock()
	defer o.Unlock()

	o.logger.Log(c, "", mylog.SeverityInfo, "Widget %s callback", kind)
	o.sideChannel = append(o.sideChannel, SideChannelEvent{
		Kind:       kind,
		Payload:    payload,
		ReceivedAt: o.nower.Now(),
	})
}

func (o *Orchestrator) moveTo(c context.Context, next State) {
	o.Lock()
	defer o.Unlock()

	o.transition(c, next)
}

// transition must be called with the lock held.
func (o *Orchestrator) transition(c context.Context, next State) {
	if !o.state.CanTransitionTo(next) {
		// Only reachable through a programming error in this package.
		panic(fmt.Sprintf("invalid checkout transition %s -> %s", o.state, next))
	}
	o.logger.Log(c, "", mylog.SeverityDebug, "Checkout %s -> %s", o.state, next)
	o.state = next
	if next.IsTerminal() {
		o.abandon = nil
	}
}

func (o *Orchestrator) traceLabel() string {
	o.Lock()
	defer o.Unlock()

	if o.intent == nil {
		return ""
	}
	return o.intent.IntentID
}

type widgetResult struct {
	payment           *PaymentResult
	validationFailure *ValidationFailure
}

// latch lets exactly one widget callback through per attempt.
type latch struct {
	once    sync.Once
	results chan widgetResult
}

func newLatch() *latch {
	return &latch{
		results: make(chan widgetResult, 1),
	}
}

func (l *latch) resolve(result widgetResult) bool {
	resolved := false
	l.once.Do(func() {
		l.results <- result
		resolved = true
	})
	return resolved
}

// close makes every later callback a no-op.
func (l *latch) close() {
	l.once.Do(func() {})
}
