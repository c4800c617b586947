// Package email validates recipient addresses and delivers questionnaire
// results through the Microsoft Graph sendMail API.
package email

import (
	"context"
	"regexp"
	"strings"
)

// addressPattern requires a local part, an @, and a domain whose top-level
// label is at least two characters.
var addressPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// Validate reports whether the address is a syntactically plausible email.
// Empty and whitespace-only input is rejected.
func Validate(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	return addressPattern.MatchString(address)
}

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers messages. The Graph implementation is the production
// sender; tests substitute their own.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
