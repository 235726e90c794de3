package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"github.com/dalemusser/focushub/internal/app/system/normalize"
	"github.com/dalemusser/focushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document exists for the given identity.
	ErrNotFound = errors.New("user not found")
	// ErrMissingIdentity is returned when an upsert arrives without uid or email.
	ErrMissingIdentity = errors.New("uid and email are required")
)

type Store struct {
	c     *mongo.Collection
	guard *mongoguard.Guard
}

func New(db *mongo.Database, guard *mongoguard.Guard) *Store {
	return &Store{c: db.Collection("users"), guard: guard}
}

// Identity carries the profile fields asserted by the caller on login.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Provider    string
}

// UpsertResult reports whether UpsertIdentity created a new document and,
// for the update branch, how many documents the write touched.
type UpsertResult struct {
	Created  bool  `json:"created"`
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

// UpdateCounts reports how many documents a partial update touched.
type UpdateCounts struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

// GetByUID loads a user by the stable external identity.
// Returns ErrNotFound when absent.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	if err := s.guard.Ensure(ctx); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive, trimmed email.
// Returns ErrNotFound when absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := s.guard.Ensure(ctx); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpsertIdentity creates the user document on first login and refreshes the
// profile fields and lastLogin on every later one. The creation path runs
// at most once per uid: sub-collections and createdAt are seeded once and
// never reinitialized.
//
// This is a check-then-act sequence with no isolation between the existence
// check and the insert; the unique uid index settles the race, and the loser
// falls through to the update branch.
func (s *Store) UpsertIdentity(ctx context.Context, id Identity) (UpsertResult, error) {
	if id.UID == "" || normalize.Email(id.Email) == "" {
		return UpsertResult{}, ErrMissingIdentity
	}
	if err := s.guard.Ensure(ctx); err != nil {
		return UpsertResult{}, err
	}

	// Capture timestamp once for consistent lastLogin/createdAt across both branches.
	now := time.Now()

	err := s.c.FindOne(ctx, bson.M{"uid": id.UID}).Err()
	switch {
	case err == mongo.ErrNoDocuments:
		doc := models.User{
			UID:           id.UID,
			Email:         id.Email,
			EmailCI:       normalize.Email(id.Email),
			DisplayName:   normalize.Name(id.DisplayName),
			PhotoURL:      id.PhotoURL,
			Provider:      id.Provider,
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
		if _, insErr := s.c.InsertOne(ctx, doc); insErr != nil {
			if wafflemongo.IsDup(insErr) {
				// Lost a concurrent first-login race; the document exists now.
				return s.updateProfile(ctx, id, now)
			}
			return UpsertResult{}, insErr
		}
		return UpsertResult{Created: true}, nil

	case err != nil:
		return UpsertResult{}, err

	default:
		return s.updateProfile(ctx, id, now)
	}
}

func (s *Store) updateProfile(ctx context.Context, id Identity, now time.Time) (UpsertResult, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"uid": id.UID}, bson.M{"$set": bson.M{
		"email":       id.Email,
		"email_ci":    normalize.Email(id.Email),
		"displayName": normalize.Name(id.DisplayName),
		"photoURL":    id.PhotoURL,
		"provider":    id.Provider,
		"lastLogin":   now,
	}})
	if err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// ReplaceFields merges the given top-level fields into the stored document,
// replacing each named field wholesale (no deep merge). Used for bulk saves
// of the opaque sub-collections from the client's authoritative state.
//
// Fields the client must not rewrite (_id, uid, createdAt, email_ci) are
// stripped; when the patch names email, the email_ci shadow is refreshed so
// case-insensitive lookups stay coherent. A non-string email is dropped from
// the patch for the same reason.
func (s *Store) ReplaceFields(ctx context.Context, uid string, fields bson.M) (UpdateCounts, error) {
	if err := s.guard.Ensure(ctx); err != nil {
		return UpdateCounts{}, err
	}

	set := bson.M{}
	for k, v := range fields {
		switch k {
		case "_id", "id", "uid", "createdAt", "email_ci":
			continue
		}
		set[k] = v
	}
	if raw, ok := set["email"]; ok {
		if email, ok := raw.(string); ok {
			set["email_ci"] = normalize.Email(email)
		} else {
			// Anything but a string would leave the email_ci shadow stale.
			delete(set, "email")
		}
	}
	if len(set) == 0 {
		return UpdateCounts{}, nil
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	if err != nil {
		return UpdateCounts{}, err
	}
	return UpdateCounts{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// ReplaceNamaz replaces the prayer-tracker records wholesale. An empty
// sequence is a valid replacement.
func (s *Store) ReplaceNamaz(ctx context.Context, uid string, records []bson.M) (UpdateCounts, error) {
	if records == nil {
		records = []bson.M{}
	}
	return s.setField(ctx, uid, "namaz", records)
}

// ReplaceSettings replaces the settings object wholesale.
func (s *Store) ReplaceSettings(ctx context.Context, uid string, settings bson.M) (UpdateCounts, error) {
	return s.setField(ctx, uid, "settings", settings)
}

func (s *Store) setField(ctx context.Context, uid, field string, value any) (UpdateCounts, error) {
	if err := s.guard.Ensure(ctx); err != nil {
		return UpdateCounts{}, err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return UpdateCounts{}, err
	}
	return UpdateCounts{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}
