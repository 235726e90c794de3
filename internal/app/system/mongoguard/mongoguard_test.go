package mongoguard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"github.com/dalemusser/focushub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// newUnreachableClient builds a client pointed at a port nothing listens on,
// with short driver timeouts so failing pings return quickly.
func newUnreachableClient(t *testing.T) *mongo.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(200*time.Millisecond).
		SetConnectTimeout(200*time.Millisecond))
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestEnsure_ReachableServer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guard := mongoguard.New(db.Client(), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := guard.Ensure(ctx); err != nil {
		t.Fatalf("Ensure failed against reachable server: %v", err)
	}
	// A second call goes through the same path and must also succeed.
	if err := guard.Ensure(ctx); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
}

func TestEnsure_ConcurrentCalls(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guard := mongoguard.New(db.Client(), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Healthy-path calls must be able to overlap; a burst of them should
	// all succeed without queueing into timeouts.
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- guard.Ensure(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Ensure failed: %v", err)
		}
	}
}

func TestEnsure_UnreachableServer(t *testing.T) {
	guard := mongoguard.New(newUnreachableClient(t), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := guard.Ensure(ctx)
	if err == nil {
		t.Fatal("expected error against unreachable server")
	}
	if !errors.Is(err, mongoguard.ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestClient_ReturnsInjectedClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guard := mongoguard.New(db.Client(), zap.NewNop())

	if guard.Client() != db.Client() {
		t.Error("Client() did not return the injected client")
	}
}
