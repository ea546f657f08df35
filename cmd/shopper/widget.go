package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
	"github.com/MarcGrol/canpayshop/services/checkout"
)

// terminalWidget shows the launch config and lets the user paste what the sandbox widget returned.
type terminalWidget struct {
	in  *bufio.Scanner
	out io.Writer
}

func (w *terminalWidget) Launch(c context.Context, cfg checkout.LaunchConfig) error {
	launch, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding launch config: %w", err)
	}
	fmt.Fprintf(w.out, "Widget launched with:\n%s\n", launch)

	fmt.Fprintln(w.out, "Payment response (empty to reject the intent):")
	payload, err := w.readLine()
	if err != nil {
		return err
	}
	if payload == "" {
		go cfg.IntentIDValidationCallback(checkout.ValidationFailure{Message: "intent rejected in terminal"})
		return nil
	}

	fmt.Fprintln(w.out, "Signature:")
	signature, err := w.readLine()
	if err != nil {
		return err
	}

	result := checkout.PaymentResult{
		Status:     checkout.PaymentPending,
		RawPayload: payload,
		Signature:  signature,
	}
	tx, err := canpayapi.ParseTransaction(payload)
	if err == nil {
		result.Status = checkout.PaymentStatus(strings.ToLower(tx.Status))
		result.TransactionID = string(tx.TransactionID)
		result.Amount = tx.Amount
	}
	go cfg.ProcessedCallback(result)

	return nil
}

func (w *terminalWidget) readLine() (string, error) {
	if !w.in.Scan() {
		if w.in.Err() != nil {
			return "", fmt.Errorf("error reading widget input: %w", w.in.Err())
		}
		return "", errors.New("widget input closed")
	}
	return strings.TrimSpace(w.in.Text()), nil
}
