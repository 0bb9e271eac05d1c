package invitee

import (
	"time"

	"github.com/google/uuid"
)

// Status is the invitee follow-up status. Transitions are not constrained to
// any order; any status may be set at any time.
type Status string

const (
	StatusInvited    Status = "invited"
	StatusConfirmed  Status = "confirmed"
	StatusAttended   Status = "attended"
	StatusJoinedCell Status = "joined_cell"
	StatusNoShow     Status = "no_show"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusInvited, StatusConfirmed, StatusAttended, StatusJoinedCell, StatusNoShow:
		return true
	}
	return false
}

// Invitee represents a row in the invitees table.
type Invitee struct {
	ID              uuid.UUID
	Name            string
	Phone           string
	Email           string
	TeamID          *uuid.UUID
	CellID          *uuid.UUID
	InvitedBy       uuid.UUID
	Status          Status
	InviteDate      time.Time
	ServiceDate     *time.Time
	AttendedService *bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Attended reports whether this invitee counts as having attended a service:
// the attended_service flag is set, or the status implies attendance.
func (i *Invitee) Attended() bool {
	if i.AttendedService != nil && *i.AttendedService {
		return true
	}
	return i.Status == StatusAttended || i.Status == StatusJoinedCell
}

// UpdateFields holds user-updatable fields on an invitee record. Nil fields
// are not updated.
type UpdateFields struct {
	Name            *string
	Phone           *string
	Email           *string
	TeamID          *uuid.UUID
	CellID          *uuid.UUID
	Status          *Status
	ServiceDate     *time.Time
	AttendedService *bool
}

// ListFilter holds optional filters and pagination for listing invitees.
type ListFilter struct {
	Status    *Status
	TeamID    *uuid.UUID
	InvitedBy *uuid.UUID
	Name      *string // partial match (ILIKE)
	Page      int     // default 1
	Limit     int     // default 20
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Invitees []Invitee
	Total    int
	Page     int
	Limit    int
}
