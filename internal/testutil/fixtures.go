package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/focushub/internal/app/system/normalize"
	"github.com/dalemusser/focushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a full user document the way a first sign-in would,
// with empty sub-collections and default settings.
func (f *Fixtures) CreateUser(ctx context.Context, uid, email, displayName string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		UID:           uid,
		Email:         normalize.Email(email),
		EmailCI:       normalize.Email(email),
		DisplayName:   displayName,
		Provider:      "google",
		Tasks:         []bson.M{},
		Habits:        []bson.M{},
		Goals:         []bson.M{},
		Notes:         []bson.M{},
		MindMap:       []bson.M{},
		Journal:       []bson.M{},
		Planner:       []bson.M{},
		Namaz:         []bson.M{},
		Settings:      models.DefaultSettings(),
		Collaboration: []models.CollaborationLink{},
		LastLogin:     now,
		CreatedAt:     now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateLinkedUsers inserts two users already joined by a collaboration link
// on both sides, the state an accepted invite leaves behind.
func (f *Fixtures) CreateLinkedUsers(ctx context.Context, uidA, emailA, uidB, emailB string) (models.User, models.User) {
	f.t.Helper()

	a := f.CreateUser(ctx, uidA, emailA, "User A")
	b := f.CreateUser(ctx, uidB, emailB, "User B")

	linkToB := models.CollaborationLink{Email: b.Email, Name: b.DisplayName, SharedTasks: []bson.M{}}
	linkToA := models.CollaborationLink{Email: a.Email, Name: a.DisplayName, SharedTasks: []bson.M{}}

	for _, upd := range []struct {
		uid  string
		link models.CollaborationLink
	}{{uidA, linkToB}, {uidB, linkToA}} {
		_, err := f.db.Collection("users").UpdateOne(ctx,
			bson.M{"uid": upd.uid},
			bson.M{"$push": bson.M{"collaboration": upd.link}})
		if err != nil {
			f.t.Fatalf("failed to link test users: %v", err)
		}
	}

	a.Collaboration = []models.CollaborationLink{linkToB}
	b.Collaboration = []models.CollaborationLink{linkToA}
	return a, b
}
