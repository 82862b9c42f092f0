package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AllocationRecord is one issued excerpt number and its context. Immutable
// once appended; corrections are made by issuing a new number, never by
// mutating history.
type AllocationRecord struct {
	ID               uuid.UUID `json:"id"`
	Ward             string    `json:"ward"`
	Year             int       `json:"year"`
	Sheet            string    `json:"sheet"`
	Plot             string    `json:"plot"`
	IssuedNumber     int64     `json:"issued_number"`
	IssuedAt         time.Time `json:"issued_at"`
	IssuedBy         string    `json:"issued_by"`
	Station          string    `json:"station,omitempty"`
	LinkedRecordCode string    `json:"linked_record_code,omitempty"`
}

// AllocateRequest is the caller's side of one issuance.
type AllocateRequest struct {
	Ward             string `json:"ward"`
	Year             int    `json:"year"`
	Sheet            string `json:"sheet"`
	Plot             string `json:"plot"`
	LinkedRecordCode string `json:"linked_record_code,omitempty"`
}

// Query filters the audit log. Zero values mean "no filter". CutoverYear is
// filled in by the service so the year filter follows the same consolidation
// rule as scope-key derivation: asking for a legacy year returns every entry
// of the legacy epoch.
type Query struct {
	Ward        string
	Year        int
	Text        string
	CutoverYear int
	Limit       int
}

// MatchesYear applies the consolidation-aware year filter.
func (q Query) MatchesYear(year int) bool {
	if q.Year == 0 {
		return true
	}
	if q.Year <= q.CutoverYear {
		return year <= q.CutoverYear
	}
	return year == q.Year
}

// MatchesText reports whether the record's sheet, plot, or linked record code
// contains the filter text, case-insensitively.
func (q Query) MatchesText(r AllocationRecord) bool {
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	return strings.Contains(strings.ToLower(r.Sheet), needle) ||
		strings.Contains(strings.ToLower(r.Plot), needle) ||
		strings.Contains(strings.ToLower(r.LinkedRecordCode), needle)
}

// Matches applies every filter.
func (q Query) Matches(r AllocationRecord) bool {
	if q.Ward != "" && r.Ward != q.Ward {
		return false
	}
	return q.MatchesYear(r.Year) && q.MatchesText(r)
}
