package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is owned by an external service; this application only reads
// the time zone and membership needed for scheduling and access checks.
type Workspace struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	TimeZone    string    `db:"time_zone" json:"time_zone"`
	OwnerUserID uuid.UUID `db:"owner_user_id" json:"owner_user_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Members []WorkspaceMember `json:"members,omitempty"`
}

type WorkspaceMember struct {
	WorkspaceID uuid.UUID `db:"workspace_id" json:"workspace_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Role        string    `db:"role" json:"role"`
}

// HasMember reports whether userID is the owner or an explicit member.
func (w *Workspace) HasMember(userID uuid.UUID) bool {
	if w.OwnerUserID == userID {
		return true
	}
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
