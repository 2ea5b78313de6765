package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocumentVersion schema version written into new documents
const DocumentVersion = "1.0"

// DocumentSettings document metadata, written once when the document is created
type DocumentSettings struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// Aggregate every collection of the club, persisted as one JSON document.
// Operations on it are pure; the engine clones before mutating.
type Aggregate struct {
	Participants []Participant     `json:"participants"`
	Competitions []Competition     `json:"competitions"`
	Attendance   []Attendance      `json:"attendance"`
	Settings     *DocumentSettings `json:"settings,omitempty"`
}

// NewAggregate empty aggregate without document settings
func NewAggregate() *Aggregate {
	return &Aggregate{
		Participants: []Participant{},
		Competitions: []Competition{},
		Attendance:   []Attendance{},
	}
}

// NewDocument empty aggregate as written on first remote creation
func NewDocument(now time.Time) *Aggregate {
	a := NewAggregate()
	a.EnsureSettings(now)
	return a
}

// ParseDocument decodes a persisted document and replaces missing collections with empty ones
func ParseDocument(data []byte) (*Aggregate, error) {
	var a Aggregate
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	a.Normalize()
	return &a, nil
}

// MarshalDocument indented JSON as stored remotely and locally
func (a *Aggregate) MarshalDocument() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Normalize replaces nil collections with empty ones so they encode as []
func (a *Aggregate) Normalize() {
	if a.Participants == nil {
		a.Participants = []Participant{}
	}
	if a.Competitions == nil {
		a.Competitions = []Competition{}
	}
	if a.Attendance == nil {
		a.Attendance = []Attendance{}
	}
}

// EnsureSettings sets version and creation time if the document has none; existing settings are never touched
func (a *Aggregate) EnsureSettings(now time.Time) bool {
	if a.Settings != nil {
		return false
	}
	a.Settings = &DocumentSettings{Version: DocumentVersion, CreatedAt: Timestamp(now)}
	return true
}

// Clone deep copy
func (a *Aggregate) Clone() *Aggregate {
	c := &Aggregate{
		Participants: append(make([]Participant, 0, len(a.Participants)), a.Participants...),
		Competitions: append(make([]Competition, 0, len(a.Competitions)), a.Competitions...),
		Attendance:   append(make([]Attendance, 0, len(a.Attendance)), a.Attendance...),
	}
	if a.Settings != nil {
		s := *a.Settings
		c.Settings = &s
	}
	return c
}

// SanitizeReport what Sanitize had to repair
type SanitizeReport struct {
	DanglingRows  int // rows whose participant or competition does not exist
	DuplicateRows int // repeated (participant, competition) pairs, first one kept
	FeeResets     int // rows whose status or fee violated the fee rule
}

// Changed reports whether anything was repaired
func (r SanitizeReport) Changed() bool {
	return r.DanglingRows+r.DuplicateRows+r.FeeResets > 0
}

// Sanitize restores the relational invariants on a document that came from outside the engine
func (a *Aggregate) Sanitize() SanitizeReport {
	a.Normalize()
	var report SanitizeReport

	participants := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		participants[p.ID] = struct{}{}
	}
	competitions := make(map[string]struct{}, len(a.Competitions))
	for _, c := range a.Competitions {
		competitions[c.ID] = struct{}{}
	}

	seen := make(map[attendanceKey]struct{}, len(a.Attendance))
	rows := a.Attendance[:0]
	for _, row := range a.Attendance {
		_, okP := participants[row.ParticipantID]
		_, okC := competitions[row.CompetitionID]
		if !okP || !okC {
			report.DanglingRows++
			continue
		}
		key := attendanceKey{row.ParticipantID, row.CompetitionID}
		if _, dup := seen[key]; dup {
			report.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}
		if row.normalize() {
			report.FeeResets++
		}
		rows = append(rows, row)
	}
	a.Attendance = rows
	return report
}

type attendanceKey struct {
	participantID string
	competitionID string
}

// FindParticipant index of the participant, -1 if absent
func (a *Aggregate) FindParticipant(id string) int {
	for i := range a.Participants {
		if a.Participants[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCompetition index of the competition, -1 if absent
func (a *Aggregate) FindCompetition(id string) int {
	for i := range a.Competitions {
		if a.Competitions[i].ID == id {
			return i
		}
	}
	return -1
}

// FindAttendance index of the (participant, competition) row, -1 if absent
func (a *Aggregate) FindAttendance(participantID, competitionID string) int {
	for i := range a.Attendance {
		if a.Attendance[i].ParticipantID == participantID && a.Attendance[i].CompetitionID == competitionID {
			return i
		}
	}
	return -1
}

// Lookup stored row, or the implicit pending row when none is stored
func (a *Aggregate) Lookup(participantID, competitionID string) Attendance {
	if i := a.FindAttendance(participantID, competitionID); i >= 0 {
		return a.Attendance[i]
	}
	return PendingAttendance(participantID, competitionID)
}

// RemoveParticipant deletes the participant and all of its attendance rows.
// Returns the number of attendance rows removed and whether the participant existed.
func (a *Aggregate) RemoveParticipant(id string) (int, bool) {
	i := a.FindParticipant(id)
	if i < 0 {
		return 0, false
	}
	a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	return a.removeAttendanceWhere(func(row Attendance) bool { return row.ParticipantID == id }), true
}

// RemoveCompetition deletes the competition and all of its attendance rows
func (a *Aggregate) RemoveCompetition(id string) (int, bool) {
	i := a.FindCompetition(id)
	if i < 0 {
		return 0, false
	}
	a.Competitions = append(a.Competitions[:i], a.Competitions[i+1:]...)
	return a.removeAttendanceWhere(func(row Attendance) bool { return row.CompetitionID == id }), true
}

func (a *Aggregate) removeAttendanceWhere(match func(Attendance) bool) int {
	rows := a.Attendance[:0]
	removed := 0
	for _, row := range a.Attendance {
		if match(row) {
			removed++
			continue
		}
		rows = append(rows, row)
	}
	a.Attendance = rows
	return removed
}

// UpsertAttendance replaces the row with the same key or appends it; the fee rule is applied.
// Foreign keys are the caller's responsibility.
func (a *Aggregate) UpsertAttendance(row Attendance) Attendance {
	row.normalize()
	if i := a.FindAttendance(row.ParticipantID, row.CompetitionID); i >= 0 {
		a.Attendance[i] = row
		return row
	}
	a.Attendance = append(a.Attendance, row)
	return row
}

// RemoveAttendance deletes the row if present
func (a *Aggregate) RemoveAttendance(participantID, competitionID string) bool {
	i := a.FindAttendance(participantID, competitionID)
	if i < 0 {
		return false
	}
	a.Attendance = append(a.Attendance[:i], a.Attendance[i+1:]...)
	return true
}

// AttendanceByCompetition one row per participant (in participant order), pending where nothing is stored
func (a *Aggregate) AttendanceByCompetition(competitionID string) []Attendance {
	stored := make(map[string]Attendance)
	for _, row := range a.Attendance {
		if row.CompetitionID == competitionID {
			stored[row.ParticipantID] = row
		}
	}
	rows := make([]Attendance, 0, len(a.Participants))
	for _, p := range a.Participants {
		row, ok := stored[p.ID]
		if !ok {
			row = PendingAttendance(p.ID, competitionID)
		}
		rows = append(rows, row)
	}
	return rows
}

// AttendanceByParticipant one row per competition (in competition order), pending where nothing is stored
func (a *Aggregate) AttendanceByParticipant(participantID string) []Attendance {
	stored := make(map[string]Attendance)
	for _, row := range a.Attendance {
		if row.ParticipantID == participantID {
			stored[row.CompetitionID] = row
		}
	}
	rows := make([]Attendance, 0, len(a.Competitions))
	for _, c := range a.Competitions {
		row, ok := stored[c.ID]
		if !ok {
			row = PendingAttendance(participantID, c.ID)
		}
		rows = append(rows, row)
	}
	return rows
}
