// Package backends opens the document store selected by configuration.
// The server bootstrap and the operator CLI share it.
package backends

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/app/store/docstore/mongodocs"
	"github.com/dalemusser/runtracker/internal/app/store/docstore/sqlitedocs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Backend names.
const (
	Mongo  = "mongo"
	SQLite = "sqlite"
	Memory = "memory"
)

// Names lists the accepted backend values.
var Names = []string{Mongo, SQLite, Memory}

// Config selects and parameterises a backend.
type Config struct {
	Backend          string
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	SQLitePath       string
}

// Validate checks the backend name and the settings it needs.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case Mongo:
		if c.MongoDatabase == "" {
			return fmt.Errorf("mongo backend: database name is empty")
		}
	case SQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite backend: path is empty")
		}
	case Memory:
	default:
		return fmt.Errorf("unknown store backend %q (want one of %s)", c.Backend, strings.Join(Names, ", "))
	}
	return nil
}

// Opened is a connected document store. MongoClient and MongoDatabase
// are set only for the mongo backend.
type Opened struct {
	Name          string
	Docs          docstore.Store
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}

// Close releases the store and, for mongo, disconnects the client.
func (o Opened) Close(ctx context.Context) error {
	if o.Docs != nil {
		if err := o.Docs.Close(ctx); err != nil {
			return err
		}
	}
	if o.MongoClient != nil {
		return o.MongoClient.Disconnect(ctx)
	}
	return nil
}

// Open connects the configured backend. For mongo the server is pinged
// before returning.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Opened, error) {
	if err := cfg.Validate(); err != nil {
		return Opened{}, err
	}
	name := strings.ToLower(cfg.Backend)

	switch name {
	case Mongo:
		opts := options.Client().ApplyURI(cfg.MongoURI)
		if cfg.MongoMaxPoolSize > 0 {
			opts.SetMaxPoolSize(cfg.MongoMaxPoolSize)
		}
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return Opened{}, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return Opened{}, fmt.Errorf("ping mongo: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		return Opened{Name: name, Docs: mongodocs.New(db), MongoClient: client, MongoDatabase: db}, nil

	case SQLite:
		s, err := sqlitedocs.Open(cfg.SQLitePath, logger)
		if err != nil {
			return Opened{}, err
		}
		return Opened{Name: name, Docs: s}, nil

	default:
		logger.Warn("using in-memory document store; data is lost on exit")
		return Opened{Name: name, Docs: docstore.NewMemory()}, nil
	}
}
