package collabstore_test

import (
	"errors"
	"testing"

	collabstore "github.com/dalemusser/focushub/internal/app/store/collaboration"
	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"github.com/dalemusser/focushub/internal/domain/models"
	"github.com/dalemusser/focushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*collabstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	guard := mongoguard.New(db.Client(), zap.NewNop())
	return collabstore.New(db, guard, zap.NewNop()), testutil.NewFixtures(t, db)
}

func findUser(t *testing.T, fx *testutil.Fixtures, uid string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var u models.User
	if err := fx.DB().Collection("users").FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		t.Fatalf("failed to load user %s: %v", uid, err)
	}
	return u
}

func TestInvite_LinksBothSides(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "uid-a", "alice@example.com", "Alice")
	fx.CreateUser(ctx, "uid-b", "bob@example.com", "Bob")

	if err := store.Invite(ctx, "uid-a", "bob@example.com", "", ""); err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	a := findUser(t, fx, "uid-a")
	if len(a.Collaboration) != 1 {
		t.Fatalf("inviter links: got %d, want 1", len(a.Collaboration))
	}
	if a.Collaboration[0].Email != "bob@example.com" {
		t.Errorf("inviter link email: got %q", a.Collaboration[0].Email)
	}
	if a.Collaboration[0].Name != "Bob" {
		t.Errorf("inviter link name: got %q, want stored profile name", a.Collaboration[0].Name)
	}
	if a.Collaboration[0].SharedTasks == nil {
		t.Error("expected sharedTasks initialized to empty slice")
	}

	b := findUser(t, fx, "uid-b")
	if len(b.Collaboration) != 1 {
		t.Fatalf("invitee links: got %d, want 1", len(b.Collaboration))
	}
	if b.Collaboration[0].Email != "alice@example.com" {
		t.Errorf("invitee link email: got %q", b.Collaboration[0].Email)
	}
}

func TestInvite_ResolvesEmailCaseInsensitive(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "uid-a", "alice@example.com", "Alice")
	fx.CreateUser(ctx, "uid-b", "bob@example.com", "Bob")

	if err := store.Invite(ctx, "uid-a", "  BOB@Example.COM  ", "", ""); err != nil {
		t.Fatalf("Invite with mixed-case email failed: %v", err)
	}

	a := findUser(t, fx, "uid-a")
	if len(a.Collaboration) != 1 {
		t.Fatalf("inviter links: got %d, want 1", len(a.Collaboration))
	}
	// The stored link carries the invitee's canonical email, not the raw input.
	if a.Collaboration[0].Email != "bob@example.com" {
		t.Errorf("link email: got %q, want canonical", a.Collaboration[0].Email)
	}
}

func TestInvite_DuplicateIsNoOp(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "uid-a", "alice@example.com", "Alice")
	fx.CreateUser(ctx, "uid-b", "bob@example.com", "Bob")

	for i := 0; i < 3; i++ {
		if err := store.Invite(ctx, "uid-a", "bob@example.com", "", ""); err != nil {
			t.Fatalf("Invite #%d failed: %v", i+1, err)
		}
	}

	a := findUser(t, fx, "uid-a")
	if len(a.Collaboration) != 1 {
		t.Errorf("inviter links after repeat invites: got %d, want 1", len(a.Collaboration))
	}
	b := findUser(t, fx, "uid-b")
	if len(b.Collaboration) != 1 {
		t.Errorf("invitee links after repeat invites: got %d, want 1", len(b.Collaboration))
	}
}

func TestInvite_UnknownParties(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "uid-a", "alice@example.com", "Alice")

	if err := store.Invite(ctx, "uid-missing", "alice@example.com", "", ""); !errors.Is(err, collabstore.ErrInviterNotFound) {
		t.Errorf("got %v, want ErrInviterNotFound", err)
	}
	if err := store.Invite(ctx, "uid-a", "stranger@example.com", "", ""); !errors.Is(err, collabstore.ErrInviteeNotFound) {
		t.Errorf("got %v, want ErrInviteeNotFound", err)
	}
	if err := store.Invite(ctx, "", "alice@example.com", "", ""); !errors.Is(err, collabstore.ErrMissingFields) {
		t.Errorf("got %v, want ErrMissingFields", err)
	}
	if err := store.Invite(ctx, "uid-a", "   ", "", ""); !errors.Is(err, collabstore.ErrMissingFields) {
		t.Errorf("got %v, want ErrMissingFields", err)
	}
}

func TestRemove_IsOneSided(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateLinkedUsers(ctx, "uid-a", "alice@example.com", "uid-b", "bob@example.com")

	if err := store.Remove(ctx, "uid-a", "bob@example.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	a := findUser(t, fx, "uid-a")
	if len(a.Collaboration) != 0 {
		t.Errorf("remover links: got %d, want 0", len(a.Collaboration))
	}
	// The mirrored link survives; removal does not cascade.
	b := findUser(t, fx, "uid-b")
	if len(b.Collaboration) != 1 {
		t.Errorf("peer links: got %d, want 1", len(b.Collaboration))
	}
}

func TestRemove_MissingFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Remove(ctx, "", "bob@example.com"); !errors.Is(err, collabstore.ErrMissingFields) {
		t.Errorf("got %v, want ErrMissingFields", err)
	}
	if err := store.Remove(ctx, "uid-a", ""); !errors.Is(err, collabstore.ErrMissingFields) {
		t.Errorf("got %v, want ErrMissingFields", err)
	}
}

func TestUpdateSharedTasks_ReplacesList(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateLinkedUsers(ctx, "uid-a", "alice@example.com", "uid-b", "bob@example.com")

	tasks := []bson.M{
		{"title": "shared one", "done": false},
		{"title": "shared two", "done": true},
	}
	matched, err := store.UpdateSharedTasks(ctx, "uid-a", "bob@example.com", tasks)
	if err != nil {
		t.Fatalf("UpdateSharedTasks failed: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched: got %d, want 1", matched)
	}

	a := findUser(t, fx, "uid-a")
	if len(a.Collaboration) != 1 || len(a.Collaboration[0].SharedTasks) != 2 {
		t.Fatalf("sharedTasks not replaced: %+v", a.Collaboration)
	}

	// The peer's copy of the link is untouched.
	b := findUser(t, fx, "uid-b")
	if len(b.Collaboration) != 1 || len(b.Collaboration[0].SharedTasks) != 0 {
		t.Errorf("peer sharedTasks changed: %+v", b.Collaboration)
	}
}

func TestUpdateSharedTasks_NoMatchingLink(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "uid-a", "alice@example.com", "Alice")

	matched, err := store.UpdateSharedTasks(ctx, "uid-a", "stranger@example.com", []bson.M{{"title": "x"}})
	if err != nil {
		t.Fatalf("UpdateSharedTasks failed: %v", err)
	}
	if matched != 0 {
		t.Errorf("matched: got %d, want 0 for absent link", matched)
	}
}
