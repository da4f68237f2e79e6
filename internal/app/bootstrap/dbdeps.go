// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Docs is always set. MongoClient and MongoDatabase are set only when
// the mongo backend is selected; they back index setup.
type DBDeps struct {
	Backend       string
	Docs          docstore.Store
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
