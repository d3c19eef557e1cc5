package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/okian/eventquote/internal/domain/model"
)

const driverPebble = "pebble"

// Key layout:
//
//	c/<collection>       collection marker
//	d/<collection>/<id>  document body (JSON)
//
// Ids are time-ordered, so a prefix scan yields insertion order.
const (
	collectionPrefix = "c/"
	documentPrefix   = "d/"
)

// PebbleStore persists documents in an embedded pebble database.
type PebbleStore struct {
	db     *pebble.DB
	closed atomic.Bool
}

// NewPebbleStore opens (or creates) the database at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, storeErr("open pebble "+path, err)
	}
	return &PebbleStore{db: db}, nil
}

func collectionKey(name string) []byte {
	return []byte(collectionPrefix + name)
}

func documentKey(collection, id string) []byte {
	return []byte(documentPrefix + collection + "/" + id)
}

// documentBounds returns the [lower, upper) key range of a collection.
func documentBounds(collection string) ([]byte, []byte) {
	lower := []byte(documentPrefix + collection + "/")
	upper := []byte(documentPrefix + collection + "0") // '0' sorts right after '/'
	return lower, upper
}

func (s *PebbleStore) hasCollection(name string) (bool, error) {
	_, closer, err := s.db.Get(collectionKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

// EnsureCollection implements Store.
func (s *PebbleStore) EnsureCollection(_ context.Context, name string) (err error) {
	defer observe(driverPebble, "ensure_collection", time.Now(), &err)

	if s.closed.Load() {
		return storeErr("ensure collection "+name, ErrClosed)
	}
	if err := s.db.Set(collectionKey(name), nil, pebble.Sync); err != nil {
		return storeErr("ensure collection "+name, err)
	}
	return nil
}

// Create implements Store.
func (s *PebbleStore) Create(_ context.Context, collection string, doc model.Document) (_ model.Document, err error) {
	defer observe(driverPebble, "create", time.Now(), &err)

	op := "create in " + collection
	if s.closed.Load() {
		return nil, storeErr(op, ErrClosed)
	}
	ok, err := s.hasCollection(collection)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !ok {
		return nil, storeErr(op, ErrUnknownCollection)
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	stored := withID(doc, id)
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if err := s.db.Set(documentKey(collection, id), body, pebble.Sync); err != nil {
		return nil, storeErr(op, err)
	}
	return stored, nil
}

// List implements Store.
func (s *PebbleStore) List(_ context.Context, collection string) (_ []model.Document, err error) {
	defer observe(driverPebble, "list", time.Now(), &err)

	op := "list " + collection
	if s.closed.Load() {
		return nil, storeErr(op, ErrClosed)
	}
	ok, err := s.hasCollection(collection)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !ok {
		return nil, storeErr(op, ErrUnknownCollection)
	}

	lower, upper := documentBounds(collection)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, storeErr(op, err)
	}

	docs := make([]model.Document, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		doc, derr := decodeDocument(iter.Value())
		if derr != nil {
			_ = iter.Close()
			return nil, storeErr(op, fmt.Errorf("key %q: %w", iter.Key(), derr))
		}
		docs = append(docs, doc)
	}
	if err := iter.Close(); err != nil {
		return nil, storeErr(op, err)
	}
	return docs, nil
}

// Close implements Store. Only the first call closes the database.
func (s *PebbleStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return storeErr("close pebble", err)
	}
	return nil
}
