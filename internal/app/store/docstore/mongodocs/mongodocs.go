// Package mongodocs is the MongoDB docstore.Store. Collections map
// one-to-one onto Mongo collections and ids onto _id.
package mongodocs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store implements docstore.Store on a Mongo database.
type Store struct {
	db *mongo.Database
}

var _ docstore.Store = (*Store)(nil)

// New wraps db. The caller owns the client and disconnects it.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Database exposes the underlying database for index setup.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.ErrNotFound
	}
	return classify(err)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	m, err := docstore.Encode(doc, id)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, m, options.Replace().SetUpsert(true))
	return classify(err)
}

func (s *Store) Insert(ctx context.Context, collection, id string, doc any) error {
	m, err := docstore.Encode(doc, id)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return docstore.ErrExists
	}
	return classify(err)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if _, ok := fields["_id"]; ok {
		return fmt.Errorf("docstore: cannot update _id")
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := docstore.NewID()
	if err := s.Insert(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}
	cur, err := s.db.Collection(collection).Find(ctx, f, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return classify(err)
	}
	defer cur.Close(ctx)
	return classify(cur.All(ctx, out))
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err)
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.Client().Ping(ctx, readpref.Primary()))
}

// Close is a no-op; the client is disconnected by its owner.
func (s *Store) Close(context.Context) error { return nil }

// classify wraps network faults, server timeouts and deadlines in
// docstore.ErrTransient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", docstore.ErrTransient, err)
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorLabel("RetryableWriteError") || se.HasErrorLabel("TransientTransactionError")) {
		return fmt.Errorf("%w: %v", docstore.ErrTransient, err)
	}
	return err
}
