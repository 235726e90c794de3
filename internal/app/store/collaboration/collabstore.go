// Package collabstore maintains the symmetric collaboration links embedded
// in user documents. It operates on the same users collection as userstore;
// the link set lives inside each user's document, not in its own collection.
package collabstore

import (
	"context"
	"errors"

	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"github.com/dalemusser/focushub/internal/app/system/normalize"
	"github.com/dalemusser/focushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrInviterNotFound is returned when the inviting uid has no document.
	ErrInviterNotFound = errors.New("inviter not found")
	// ErrInviteeNotFound is returned when no document matches the invited email.
	ErrInviteeNotFound = errors.New("invitee not found")
	// ErrMissingFields is returned when an operation arrives without its
	// required identity fields.
	ErrMissingFields = errors.New("required fields missing")
)

type Store struct {
	c     *mongo.Collection
	guard *mongoguard.Guard
	log   *zap.Logger
}

func New(db *mongo.Database, guard *mongoguard.Guard, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("users"), guard: guard, log: logger}
}

// Invite links two users for task sharing. The inviter is resolved by uid,
// the invitee by case-insensitive trimmed email. A link is pushed onto each
// side carrying a snapshot of the peer's profile; the stored profile wins
// over the caller-supplied hints. Adding a link whose peer email is already
// present is a no-op, which gives the collaboration set its uniqueness.
//
// The two writes are independent: the mirror write is attempted even though
// nothing depends on the first one's outcome, and there is no compensating
// action if it fails after the first succeeds. A partial link is a possible
// terminal state.
func (s *Store) Invite(ctx context.Context, inviterUID, inviteeEmail, nameHint, avatarHint string) error {
	if inviterUID == "" || normalize.Email(inviteeEmail) == "" {
		return ErrMissingFields
	}
	if err := s.guard.Ensure(ctx); err != nil {
		return err
	}

	var inviter models.User
	if err := s.c.FindOne(ctx, bson.M{"uid": inviterUID}).Decode(&inviter); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrInviterNotFound
		}
		return err
	}

	var invitee models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(inviteeEmail)}).Decode(&invitee); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrInviteeNotFound
		}
		return err
	}

	inviteeName := invitee.DisplayName
	if inviteeName == "" {
		inviteeName = nameHint
	}
	inviteeAvatar := invitee.PhotoURL
	if inviteeAvatar == "" {
		inviteeAvatar = avatarHint
	}

	if err := s.pushLink(ctx, inviter.UID, models.CollaborationLink{
		Email:       invitee.Email,
		Name:        inviteeName,
		Avatar:      inviteeAvatar,
		SharedTasks: []bson.M{},
	}); err != nil {
		return err
	}

	// Mirror link; no rollback of the write above if this one fails.
	if err := s.pushLink(ctx, invitee.UID, models.CollaborationLink{
		Email:       inviter.Email,
		Name:        inviter.DisplayName,
		Avatar:      inviter.PhotoURL,
		SharedTasks: []bson.M{},
	}); err != nil {
		s.log.Error("mirror collaboration link failed, pair is partially linked",
			zap.String("inviter_uid", inviter.UID),
			zap.String("invitee_uid", invitee.UID),
			zap.Error(err))
		return err
	}

	return nil
}

// pushLink appends link to the uid's collaboration set unless a link with
// the same peer email is already there. The guard filter makes the push a
// set-add: a duplicate simply matches zero documents.
func (s *Store) pushLink(ctx context.Context, uid string, link models.CollaborationLink) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid, "collaboration.email": bson.M{"$ne": link.Email}},
		bson.M{"$push": bson.M{"collaboration": link}},
	)
	return err
}

// Remove deletes the link matching collaboratorEmail from the one document
// only. The mirrored link on the collaborator's side is left in place; the
// removal is one-sided, matching the behavior of the system this replaces.
func (s *Store) Remove(ctx context.Context, uid, collaboratorEmail string) error {
	if uid == "" || collaboratorEmail == "" {
		return ErrMissingFields
	}
	if err := s.guard.Ensure(ctx); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$pull": bson.M{"collaboration": bson.M{"email": collaboratorEmail}}},
	)
	return err
}

// UpdateSharedTasks replaces the shared task list on the link matching
// collaboratorEmail in uid's document. When no link matches, the update
// touches zero documents and is a silent no-op; callers check the returned
// match count to detect it.
func (s *Store) UpdateSharedTasks(ctx context.Context, uid, collaboratorEmail string, tasks []bson.M) (int64, error) {
	if uid == "" || collaboratorEmail == "" {
		return 0, ErrMissingFields
	}
	if err := s.guard.Ensure(ctx); err != nil {
		return 0, err
	}
	if tasks == nil {
		tasks = []bson.M{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid, "collaboration.email": collaboratorEmail},
		bson.M{"$set": bson.M{"collaboration.$.sharedTasks": tasks}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
