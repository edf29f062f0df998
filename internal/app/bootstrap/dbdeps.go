// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Store is always set. The Mongo fields are only set for the mongo backend;
// AuditSink stays nil for sqlite, which keeps audit events in the log only.
type DBDeps struct {
	Backend string
	Store   storage.Store

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	AuditSink auditlog.Sink
}
