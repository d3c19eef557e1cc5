// Package repository implements the document store client behind the event service.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/metrics"
)

// Store persists schemaless documents grouped in named collections.
type Store interface {
	// EnsureCollection creates the collection if it does not exist yet.
	EnsureCollection(ctx context.Context, name string) error

	// Create stores doc as a new document and returns it with the
	// store-assigned id under model.IDField.
	Create(ctx context.Context, collection string, doc model.Document) (model.Document, error)

	// List returns every document in the collection, oldest first.
	List(ctx context.Context, collection string) ([]model.Document, error)

	// Close releases connections and files held by the store.
	Close() error
}

// Filter lists the collection and keeps the documents whose field holds a
// string equal to value. Non-string values never match.
func Filter(ctx context.Context, s Store, collection, field, value string) ([]model.Document, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if v, ok := d[field].(string); ok && v == value {
			out = append(out, d)
		}
	}
	return out, nil
}

// newID returns a time-ordered identifier so that key order matches insertion order.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("%w: generate id: %w", ErrStore, err)
	}
	return id.String(), nil
}

// withID copies doc and sets its identifier. Every other submitted key,
// including a client "id", is kept.
func withID(doc model.Document, id string) model.Document {
	out := doc.Clone()
	out[model.IDField] = id
	return out
}

// decodeDocument keeps numbers as json.Number so values survive a round trip unchanged.
func decodeDocument(b []byte) (model.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc model.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %w", ErrStore, err)
	}
	return doc, nil
}

// observe records latency and outcome of a store call; use with a named error return.
func observe(driver, op string, start time.Time, err *error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordStoreOperation(driver, op, ms, *err != nil)
}
