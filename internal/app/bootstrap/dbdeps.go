// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Mongo holds only the audit trail and login history; all visitor data
// lives behind the backend REST API. Runtime is allocated by ConnectDB and
// filled by Startup so that BuildHandler and Shutdown see the same values.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Runtime *Runtime
}
