// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Guard is injected into every store so each operation can verify
	// (and recover) connectivity before issuing its call.
	Guard *mongoguard.Guard
}
