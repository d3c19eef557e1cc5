package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okian/eventquote/internal/domain/model"
)

const driverMongo = "mongo"

// mongoNamespaceExists is the server error code for creating an existing collection.
const mongoNamespaceExists = 48

// MongoStore maps each collection onto a MongoDB collection. IDField is the
// MongoDB _id.
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoStore connects to uri and selects database.
func NewMongoStore(ctx context.Context, uri, database string, opts ...Option) (*MongoStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(uri).SetTimeout(o.timeout))
	if err != nil {
		return nil, storeErr("connect mongo", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storeErr("ping mongo", err)
	}
	return &MongoStore{client: client, db: client.Database(database), timeout: o.timeout}, nil
}

func (s *MongoStore) hasCollection(ctx context.Context, name string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// EnsureCollection implements Store.
func (s *MongoStore) EnsureCollection(ctx context.Context, name string) (err error) {
	defer observe(driverMongo, "ensure_collection", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.db.CreateCollection(ctx, name)
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == mongoNamespaceExists {
		err = nil
	}
	if err != nil {
		return storeErr("ensure collection "+name, err)
	}
	return nil
}

// Create implements Store.
func (s *MongoStore) Create(ctx context.Context, collection string, doc model.Document) (_ model.Document, err error) {
	defer observe(driverMongo, "create", time.Now(), &err)

	op := "create in " + collection
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.hasCollection(ctx, collection)
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
	if _, err := s.db.Collection(collection).InsertOne(ctx, stored); err != nil {
		return nil, storeErr(op, err)
	}
	return stored, nil
}

// List implements Store. Documents are read back through relaxed extended
// JSON so that values have the same shapes as in the other stores.
func (s *MongoStore) List(ctx context.Context, collection string) (_ []model.Document, err error) {
	defer observe(driverMongo, "list", time.Now(), &err)

	op := "list " + collection
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.hasCollection(ctx, collection)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !ok {
		return nil, storeErr(op, ErrUnknownCollection)
	}

	cur, err := s.db.Collection(collection).Find(ctx, bson.D{},
		mongoopts.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer func() { _ = cur.Close(context.Background()) }()

	docs := make([]model.Document, 0)
	for cur.Next(ctx) {
		raw, err := bson.MarshalExtJSON(cur.Current, false, false)
		if err != nil {
			return nil, storeErr(op, err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, storeErr(op, err)
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return docs, nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return storeErr("disconnect mongo", err)
	}
	return nil
}
