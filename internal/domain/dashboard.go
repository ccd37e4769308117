package domain

import (
	"context"
	"time"
)

// MemberDashboard is the data behind the member dashboard page.
type MemberDashboard struct {
	Identity        Identity                      `json:"identity"`
	Profile         *Profile                      `json:"profile"`
	Initials        string                        `json:"initials"`
	MemberSince     time.Time                     `json:"member_since"`
	Registrations   []*EventRegistrationWithEvent `json:"registrations"`
	RegisteredCount int                           `json:"registered_count"`
}

// EventStats counts events per known type.
type EventStats struct {
	Total      int `json:"total"`
	Hackathons int `json:"hackathons"`
	CTFs       int `json:"ctfs"`
	Workshops  int `json:"workshops"`
}

// CountEvents tallies events by type.
func CountEvents(events []*Event) EventStats {
	s := EventStats{Total: len(events)}
	for _, e := range events {
		switch e.EventType {
		case EventTypeHackathon:
			s.Hackathons++
		case EventTypeCTF:
			s.CTFs++
		case EventTypeWorkshop:
			s.Workshops++
		}
	}
	return s
}

// AdminDashboard is the data behind the admin console page.
type AdminDashboard struct {
	Identity Identity   `json:"identity"`
	Events   []*Event   `json:"events"`
	Stats    EventStats `json:"stats"`
}

// DashboardService composes session, registration and event data into page views.
type DashboardService interface {
	Member(ctx context.Context, identity Identity) (*MemberDashboard, error)
	Admin(ctx context.Context, identity Identity) (*AdminDashboard, error)
}
