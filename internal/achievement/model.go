package achievement

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies achievement definitions. Monthly evaluation applies to
// invitation_milestone (users) and team_performance (teams); lifetime
// evaluation applies to individual_performance.
type Type string

const (
	TypeInvitationMilestone   Type = "invitation_milestone"
	TypeTeamPerformance       Type = "team_performance"
	TypeIndividualPerformance Type = "individual_performance"
	TypeAttendanceMilestone   Type = "attendance_milestone"
	TypeGoalMilestone         Type = "goal_milestone"
	TypeLeadershipMilestone   Type = "leadership_milestone"
)

// ValidType reports whether t is a known achievement type.
func ValidType(t Type) bool {
	switch t {
	case TypeInvitationMilestone, TypeTeamPerformance, TypeIndividualPerformance,
		TypeAttendanceMilestone, TypeGoalMilestone, TypeLeadershipMilestone:
		return true
	}
	return false
}

// Definition represents a row in the achievements table. The catalog is
// immutable once seeded.
type Definition struct {
	ID          uuid.UUID
	Name        string
	Description string
	Type        Type
	Threshold   int
	Icon        string
	CreatedAt   time.Time
}

// UserAward represents a row in the user_achievements table.
type UserAward struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AchievementID uuid.UUID
	EarnedAt      time.Time
}

// TeamAward represents a row in the team_achievements table.
type TeamAward struct {
	ID            uuid.UUID
	TeamID        uuid.UUID
	AchievementID uuid.UUID
	EarnedAt      time.Time
}
