package conversation

import (
	"context"
	"errors"
	"time"
)

// ErrNoMessages indicates the patient has no stored turns in the
// queried window.
var ErrNoMessages = errors.New("no messages found")

type Repository interface {
	Insert(ctx context.Context, m *Message) error

	// ListSince returns the patient's messages created at or after the
	// given instant, oldest first.
	ListSince(ctx context.Context, patientID string, since time.Time) ([]*Message, error)

	// ListBetween returns the patient's messages inside [from, to],
	// oldest first.
	ListBetween(ctx context.Context, patientID string, from, to time.Time) ([]*Message, error)

	ListAll(ctx context.Context, patientID string) ([]*Message, error)

	// LastBotMessage returns the most recent bot turn, or ErrNoMessages.
	LastBotMessage(ctx context.Context, patientID string) (*Message, error)
}
