// Package audit implements the append-only audit trail. Entries are created
// exactly once as part of the operation they record and are never mutated or
// deleted afterwards; the public contract deliberately has no update path.
package audit

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionRead   ActionType = "READ"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionLogin, ActionLogout:
		return true
	}
	return false
}

type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

func (o Outcome) Valid() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}

// Entry is one immutable record of one action taken against one resource by
// one identity. All fields are fixed at creation.
type Entry struct {
	ID           uuid.UUID
	UserID       string
	ActionType   ActionType
	ResourceType string
	ResourceID   uuid.UUID
	Outcome      Outcome
	Timestamp    time.Time
}
