// Package performance computes the weekly team performance dashboard: per-team
// invite and attendance counts split by service day, global totals, and the
// top-performing team for the week containing a reference date.
package performance

import (
	"math"
	"sort"
	"time"

	"github.com/flockhq/flock/internal/invitee"
	"github.com/flockhq/flock/internal/team"
)

// TeamInput is one team's rows for the week, as fetched by the Service.
type TeamInput struct {
	Team        team.Team
	MemberCount int
	Invitees    []invitee.Invitee
}

// TeamStats is the per-team breakdown.
type TeamStats struct {
	TeamID             string `json:"teamId"`
	TeamName           string `json:"teamName"`
	MemberCount        int    `json:"memberCount"`
	WednesdayInvitees  int    `json:"wednesdayInvitees"`
	WednesdayAttendees int    `json:"wednesdayAttendees"`
	SundayInvitees     int    `json:"sundayInvitees"`
	SundayAttendees    int    `json:"sundayAttendees"`
	TotalInvitees      int    `json:"totalInvitees"`
	TotalAttendees     int    `json:"totalAttendees"`
	Conversions        int    `json:"conversions"`
}

// Result is the full weekly aggregation.
type Result struct {
	WeekStart      time.Time   `json:"weekStart"`
	WeekEnd        time.Time   `json:"weekEnd"`
	TotalTeams     int         `json:"totalTeams"`
	TotalInvitees  int         `json:"totalInvitees"`
	TotalAttendees int         `json:"totalAttendees"`
	AttendanceRate int         `json:"attendanceRate"`
	TopTeam        *TeamStats  `json:"topTeam"`
	Teams          []TeamStats `json:"teams"`
}

// serviceDay is the Wednesday/Sunday bucket an invitee belongs to.
type serviceDay int

const (
	wednesdayService serviceDay = iota
	sundayService
)

// bucketOf assigns an invitee to a service bucket. A service_date on a
// Wednesday or Sunday decides directly; anything else falls back to a weekday
// heuristic on invite_date: Mon-Wed count toward the Wednesday service,
// Sun and Thu-Sat toward the Sunday service.
func bucketOf(i *invitee.Invitee, loc *time.Location) serviceDay {
	if i.ServiceDate != nil {
		switch i.ServiceDate.In(loc).Weekday() {
		case time.Wednesday:
			return wednesdayService
		case time.Sunday:
			return sundayService
		}
	}

	switch i.InviteDate.In(loc).Weekday() {
	case time.Monday, time.Tuesday, time.Wednesday:
		return wednesdayService
	default:
		return sundayService
	}
}

// Compute reduces the fetched per-team rows into the weekly Result. It is a
// pure function: the Service (or a test) supplies all rows up front.
//
// The top team is the one with the most invitees for the week; ties go to the
// first team in input order, and TopTeam is nil when every team has zero
// invitees. The breakdown is sorted by total invitees descending, stable with
// respect to input order.
func Compute(ref time.Time, loc *time.Location, inputs []TeamInput) *Result {
	window := WeekOf(ref, loc)

	result := &Result{
		WeekStart:  window.Start,
		WeekEnd:    window.End,
		TotalTeams: len(inputs),
		Teams:      make([]TeamStats, 0, len(inputs)),
	}

	for _, input := range inputs {
		stats := TeamStats{
			TeamID:      input.Team.ID.String(),
			TeamName:    input.Team.Name,
			MemberCount: input.MemberCount,
		}

		for idx := range input.Invitees {
			inv := &input.Invitees[idx]
			if !window.Contains(inv.InviteDate) {
				continue
			}

			attended := inv.Attended()

			switch bucketOf(inv, loc) {
			case wednesdayService:
				stats.WednesdayInvitees++
				if attended {
					stats.WednesdayAttendees++
				}
			case sundayService:
				stats.SundayInvitees++
				if attended {
					stats.SundayAttendees++
				}
			}

			stats.TotalInvitees++
			if attended {
				stats.TotalAttendees++
			}
			if inv.Status == invitee.StatusJoinedCell {
				stats.Conversions++
			}
		}

		result.Teams = append(result.Teams, stats)
		result.TotalInvitees += stats.TotalInvitees
		result.TotalAttendees += stats.TotalAttendees
	}

	if result.TotalInvitees > 0 {
		result.AttendanceRate = int(math.Round(
			100 * float64(result.TotalAttendees) / float64(result.TotalInvitees)))
	}

	// Top team before sorting: ties resolve to the first team encountered.
	topIdx := -1
	for i := range result.Teams {
		if result.Teams[i].TotalInvitees == 0 {
			continue
		}
		if topIdx == -1 || result.Teams[i].TotalInvitees > result.Teams[topIdx].TotalInvitees {
			topIdx = i
		}
	}
	if topIdx >= 0 {
		top := result.Teams[topIdx]
		result.TopTeam = &top
	}

	sort.SliceStable(result.Teams, func(a, b int) bool {
		return result.Teams[a].TotalInvitees > result.Teams[b].TotalInvitees
	})

	return result
}
