// Package model holds the branch domain types exchanged with the upstream
// reservations API.
package model

import (
	"time"

	"tablero/internal/schedule"
)

// Branch is one restaurant location. Branches are fetched in bulk and
// mutated through id-scoped update calls; this service never creates or
// destroys them.
type Branch struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Reference           string           `json:"reference"`
	AcceptsReservations bool             `json:"accepts_reservations"`
	ReservationDuration int              `json:"reservation_duration"`
	ReservationTimes    schedule.WeekMap `json:"reservation_times"`
	Sections            []Section        `json:"sections,omitempty"`
	DeletedAt           *time.Time       `json:"deleted_at,omitempty"`
}

// Section groups tables within a branch.
type Section struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tables []Table `json:"tables,omitempty"`
}

// Table is a single table with its own reservation flag.
type Table struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	AcceptsReservations bool   `json:"accepts_reservations"`
}

// Deleted reports whether the branch carries a soft-delete marker.
func (b *Branch) Deleted() bool {
	return b.DeletedAt != nil
}

// Clone returns a deep copy, including the week map and section slices,
// so rollback snapshots cannot be mutated through shared references.
func (b *Branch) Clone() *Branch {
	out := *b
	out.ReservationTimes = schedule.Clone(b.ReservationTimes)
	if b.Sections != nil {
		out.Sections = make([]Section, len(b.Sections))
		for i, s := range b.Sections {
			cs := s
			if s.Tables != nil {
				cs.Tables = make([]Table, len(s.Tables))
				copy(cs.Tables, s.Tables)
			}
			out.Sections[i] = cs
		}
	}
	if b.DeletedAt != nil {
		at := *b.DeletedAt
		out.DeletedAt = &at
	}
	return &out
}

// ReservableTables lists "section - table" labels for tables that accept
// reservations.
func (b *Branch) ReservableTables() []string {
	var labels []string
	for _, s := range b.Sections {
		for _, tbl := range s.Tables {
			if tbl.AcceptsReservations {
				labels = append(labels, s.Name+" - "+tbl.Name)
			}
		}
	}
	return labels
}

// SettingsUpdate carries a branch settings save: the reservation duration
// in minutes and the full week of slots.
type SettingsUpdate struct {
	Duration int
	Times    schedule.WeekMap
}

// Active drops soft-deleted branches.
func Active(branches []*Branch) []*Branch {
	var out []*Branch
	for _, b := range branches {
		if !b.Deleted() {
			out = append(out, b)
		}
	}
	return out
}

// Enabled keeps active branches currently accepting reservations.
func Enabled(branches []*Branch) []*Branch {
	var out []*Branch
	for _, b := range Active(branches) {
		if b.AcceptsReservations {
			out = append(out, b)
		}
	}
	return out
}

// Disabled keeps active branches not accepting reservations.
func Disabled(branches []*Branch) []*Branch {
	var out []*Branch
	for _, b := range Active(branches) {
		if !b.AcceptsReservations {
			out = append(out, b)
		}
	}
	return out
}
