package oracle

import (
	"context"
	"errors"

	"bakerybot/internal/model"
)

var (
	// ErrUnparseable means the oracle answered but no intent could be read.
	ErrUnparseable = errors.New("oracle: unparseable response")
	// ErrDisabled is returned by Disabled.
	ErrDisabled = errors.New("oracle: disabled")
)

// Request is what the oracle sees of a message.
type Request struct {
	Text        string
	RequesterID string
	// Context describes an outstanding clarification, empty when none.
	Context string
}

// Oracle turns free text into a structured intent. Implementations may be
// wrong; callers treat every error as "nothing understood".
type Oracle interface {
	Classify(ctx context.Context, req Request) (*model.Intent, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, req Request) (*model.Intent, error)

func (f Func) Classify(ctx context.Context, req Request) (*model.Intent, error) {
	return f(ctx, req)
}

// Disabled is used when no model is configured; every message is ignored.
type Disabled struct{}

func (Disabled) Classify(context.Context, Request) (*model.Intent, error) {
	return nil, ErrDisabled
}
