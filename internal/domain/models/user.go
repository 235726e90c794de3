// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the single denormalized document stored per identity.
//
// The sub-collections (tasks, habits, goals, notes, mind map, journal,
// planner) are owned entirely by the client; the server never inspects
// their internal shape, so they are kept as opaque bson.M records.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID         string             `bson:"uid" json:"uid"`
	Email       string             `bson:"email" json:"email"`
	EmailCI     string             `bson:"email_ci" json:"email_ci"` // lowercase, trimmed
	DisplayName string             `bson:"displayName" json:"displayName"`
	PhotoURL    string             `bson:"photoURL" json:"photoURL"`
	Provider    string             `bson:"provider" json:"provider"`

	Tasks   []bson.M `bson:"tasks" json:"tasks"`
	Habits  []bson.M `bson:"habits" json:"habits"`
	Goals   []bson.M `bson:"goals" json:"goals"`
	Notes   []bson.M `bson:"notes" json:"notes"`
	MindMap []bson.M `bson:"mindMap" json:"mindMap"`
	Journal []bson.M `bson:"journal" json:"journal"`
	Planner []bson.M `bson:"planner" json:"planner"`

	// Namaz holds prayer-tracker records; replaced wholesale on update.
	Namaz []bson.M `bson:"namaz" json:"namaz"`

	// Settings is a single object replaced wholesale on update.
	Settings bson.M `bson:"settings" json:"settings"`

	Collaboration []CollaborationLink `bson:"collaboration" json:"collaboration"`

	LastLogin time.Time `bson:"lastLogin" json:"lastLogin"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// CollaborationLink records a sharing relationship from one user's document
// to a peer, identified by the peer's email. Name and avatar are snapshots
// taken at link time and are not kept live-updated.
type CollaborationLink struct {
	Email       string   `bson:"email" json:"email"`
	Name        string   `bson:"name" json:"name"`
	Avatar      string   `bson:"avatar" json:"avatar"`
	SharedTasks []bson.M `bson:"sharedTasks" json:"sharedTasks"`
}

// DefaultSettings returns the settings object seeded into a new user
// document: the fixed set of dashboard sections visible by default.
func DefaultSettings() bson.M {
	return bson.M{
		"visibleSections": []string{
			"Dashboard", "Tasks", "Notes", "Habits", "Goals",
			"Planner", "Journal", "Calendar", "Collaboration", "MindMap",
			"Music", "Resources", "Review", "Pomodoro", "NamazTracker",
		},
	}
}
