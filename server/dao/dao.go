// Package dao provides the data access layer of the conversion server: the
// stored example records and the store interface the endpoints use.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("the requested resource was not found")
)

// Example is one saved conversion: the utterance, its NN token sequence,
// the entity bag as JSON, and the prettyprinted ThingTalk.
type Example struct {
	ID        uuid.UUID
	Sentence  string
	Sequence  string
	Entities  string
	ThingTalk string
	Created   time.Time
}

// Store is the persistence interface of the server.
type Store interface {
	// CreateExample saves a new example. The ID and Created fields of the
	// input are ignored; the stored record is returned.
	CreateExample(ctx context.Context, ex Example) (Example, error)

	// GetExample retrieves one example by ID. Returns ErrNotFound if no
	// example has that ID.
	GetExample(ctx context.Context, id uuid.UUID) (Example, error)

	// ListExamples retrieves all examples, newest first.
	ListExamples(ctx context.Context) ([]Example, error)

	// Close releases the store's resources.
	Close() error
}
