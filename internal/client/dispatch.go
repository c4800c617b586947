package client

import (
	"context"
	"errors"
	"strings"

	"github.com/ikiguide/ikiguide/internal/email"
)

// ErrInvalidAddress is a local validation failure; no network call is made.
var ErrInvalidAddress = errors.New("invalid email address")

// EmailDispatch sends the session's results to an address. Attempts counts
// every send try, for display only; retries are caller-initiated.
type EmailDispatch struct {
	api      API
	Attempts int
}

// NewEmailDispatch builds the dispatcher.
func NewEmailDispatch(api API) *EmailDispatch {
	return &EmailDispatch{api: api}
}

// Send validates the address and posts the request. Validation failures do
// not count as attempts.
func (d *EmailDispatch) Send(ctx context.Context, address string) error {
	if !email.Validate(address) {
		return ErrInvalidAddress
	}
	d.Attempts++
	return d.api.EmailResults(ctx, strings.TrimSpace(address))
}
