// Package mongoguard verifies MongoDB connectivity before store operations.
//
// The underlying connection may silently drop between requests. A Guard is
// constructed once at startup and injected into every store; each operation
// calls Ensure first. Ensure pings the deployment, which drives the driver's
// server selection and re-establishes dropped pool connections; one retry is
// allowed before the operation is refused. The happy path takes no lock, so
// concurrent requests ping independently; only the retry after a failed ping
// is mutex-serialized, keeping recovery attempts from stampeding the server.
package mongoguard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/focushub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the database cannot be reached even after
// a reconnect attempt. Handlers surface it as 503.
var ErrUnavailable = errors.New("database unavailable")

// Guard wraps the process-wide Mongo client so connectivity can be verified
// (and recovered) before each store operation.
type Guard struct {
	mu     sync.Mutex
	client *mongo.Client
	log    *zap.Logger
}

// New constructs a Guard for the given connected client.
func New(client *mongo.Client, logger *zap.Logger) *Guard {
	return &Guard{client: client, log: logger}
}

// Client returns the guarded client.
func (g *Guard) Client() *mongo.Client {
	return g.client
}

// Ensure verifies the connection is alive. The first ping runs without any
// locking so concurrent requests do not queue behind each other; a failed
// ping falls into the serialized recovery path, which retries once, giving
// the driver a chance to rebuild dropped pool connections. Returns
// ErrUnavailable (wrapped with the underlying cause) when the database stays
// unreachable.
func (g *Guard) Ensure(ctx context.Context) error {
	if err := g.ping(ctx); err == nil {
		return nil
	}
	return g.recover(ctx)
}

// recover retries the ping under the mutex so a burst of failing requests
// produces one recovery attempt at a time instead of a stampede.
func (g *Guard) recover(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Warn("mongo ping failed, retrying before refusing operation")

	if err := g.ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	g.log.Info("mongo connection recovered")
	return nil
}

func (g *Guard) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	return g.client.Ping(pingCtx, readpref.Primary())
}
