// Package model contains domain models passed between layers.
package model

import "time"

// IDField is the key under which every store places the document identifier.
// Keys starting with an underscore belong to the store; a submitted "id" is
// an ordinary field.
const IDField = "_id"

// Document is a schemaless JSON object as persisted by the document store.
// Submitted fields are kept verbatim; stores add IDField.
type Document map[string]any

// ID returns the store-assigned identifier, or "" before creation.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a shallow copy so callers can add keys without touching the original.
func (d Document) Clone() Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Notification announces a newly created document to downstream consumers.
type Notification struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Document   Document  `json:"document"`
	CreatedAt  time.Time `json:"created_at"`
}
