package usecase

import (
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCardLimit is the nominal limit given to every newly added card.
var DefaultCardLimit = decimal.NewFromInt(100000)

type options struct {
	now       func() time.Time
	logger    *log.Logger
	newID     func() (string, error)
	cardLimit decimal.Decimal
}

// Option customizes a use case.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for state changes and transfer outcomes.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(o *options) { o.newID = fn }
}

// WithCardLimit sets the limit assigned to cards added without one.
func WithCardLimit(limit decimal.Decimal) Option {
	return func(o *options) { o.cardLimit = limit }
}

func buildOptions(opts []Option) options {
	o := options{
		now:       time.Now,
		logger:    log.New(io.Discard, "", 0),
		newID:     newUUIDv7,
		cardLimit: DefaultCardLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newUUIDv7 ids sort by creation time and stay unique under rapid calls.
func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
