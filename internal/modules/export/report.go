// README: Report data shared by the CSV and PDF renderers.
package export

import (
	"time"

	"carpool/internal/domain"
	"carpool/internal/modules/allocation"
)

// Participant is one user row, with their vehicle when they have one.
type Participant struct {
	User    domain.User
	Vehicle *domain.Vehicle
}

type Report struct {
	GeneratedAt  time.Time
	Summary      domain.Summary
	Participants []Participant
	Assignments  []allocation.AssignmentView
}

// NewReport pairs every user in the snapshot with their vehicle.
func NewReport(snap allocation.Snapshot, summary domain.Summary) Report {
	r := Report{
		GeneratedAt: snap.TakenAt,
		Summary:     summary,
		Assignments: allocation.Assignments(snap),
	}
	for _, u := range snap.Users {
		p := Participant{User: u}
		if v, ok := snap.Vehicle(u.Email); ok {
			p.Vehicle = &v
		}
		r.Participants = append(r.Participants, p)
	}
	return r
}
