package model

import (
	"strings"
	"time"

	"GolfSync/internal/errs"
)

// DateLayout calendar date format of Competition.Date
const DateLayout = "2006-01-02"

// Date calendar date (YYYY-MM-DD)
type Date string

// ParseDate trims and validates a YYYY-MM-DD date
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errs.Invalid("date", "must not be empty")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", errs.Invalid("date", "must be in YYYY-MM-DD form")
	}
	return Date(t.Format(DateLayout)), nil
}

// Time midnight UTC of the date; zero time if the stored value is malformed
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AttendanceStatus attendance state of one participant at one competition
type AttendanceStatus string

const (
	StatusPending AttendanceStatus = "pending"
	StatusAbsent  AttendanceStatus = "absent"
	StatusPresent AttendanceStatus = "present"
)

// ParseStatus validates a status name
func ParseStatus(s string) (AttendanceStatus, error) {
	switch st := AttendanceStatus(strings.TrimSpace(s)); st {
	case StatusPending, StatusAbsent, StatusPresent:
		return st, nil
	default:
		return "", errs.Invalid("status", "must be one of pending, absent, present")
	}
}

// Valid reports whether s is a known status
func (s AttendanceStatus) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Participant club member
type Participant struct {
	ID        string    `json:"id"`        // generated, immutable
	Name      string    `json:"name"`      // display name
	Email     string    `json:"email"`     // contact address
	CreatedAt time.Time `json:"createdAt"` // creation time (UTC)
}

// NewParticipant builds a participant with validated fields
func NewParticipant(id, name, email string, now time.Time) (Participant, error) {
	name, email, err := participantFields(name, email)
	if err != nil {
		return Participant{}, err
	}
	return Participant{ID: id, Name: name, Email: email, CreatedAt: Timestamp(now)}, nil
}

// Update replaces name and email; id and creation time never change
func (p *Participant) Update(name, email string) error {
	name, email, err := participantFields(name, email)
	if err != nil {
		return err
	}
	p.Name, p.Email = name, email
	return nil
}

func participantFields(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return "", "", errs.Invalid("name", "must not be empty")
	}
	if email == "" {
		return "", "", errs.Invalid("email", "must not be empty")
	}
	return name, email, nil
}

// Competition club event
type Competition struct {
	ID        string    `json:"id"`        // generated, immutable
	Title     string    `json:"title"`     // event title
	Date      Date      `json:"date"`      // day of play
	CreatedAt time.Time `json:"createdAt"` // creation time (UTC)
}

// NewCompetition builds a competition with validated fields
func NewCompetition(id, title, date string, now time.Time) (Competition, error) {
	title, d, err := competitionFields(title, date)
	if err != nil {
		return Competition{}, err
	}
	return Competition{ID: id, Title: title, Date: d, CreatedAt: Timestamp(now)}, nil
}

// Update replaces title and date
func (c *Competition) Update(title, date string) error {
	title, d, err := competitionFields(title, date)
	if err != nil {
		return err
	}
	c.Title, c.Date = title, d
	return nil
}

func competitionFields(title, date string) (string, Date, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", errs.Invalid("title", "must not be empty")
	}
	d, err := ParseDate(date)
	if err != nil {
		return "", "", err
	}
	return title, d, nil
}

// Attendance one participant at one competition; (ParticipantID, CompetitionID) is unique
type Attendance struct {
	ParticipantID string           `json:"participantId"` // FK -> Participant
	CompetitionID string           `json:"competitionId"` // FK -> Competition
	Status        AttendanceStatus `json:"status"`        // pending/absent/present
	Fee           int              `json:"fee"`           // only non-zero when present
}

// PendingAttendance the implicit value of a missing row
func PendingAttendance(participantID, competitionID string) Attendance {
	return Attendance{
		ParticipantID: participantID,
		CompetitionID: competitionID,
		Status:        StatusPending,
		Fee:           0,
	}
}

// normalize forces the fee invariant: only present rows carry a positive fee
func (a *Attendance) normalize() (changed bool) {
	if !a.Status.Valid() {
		a.Status = StatusPending
		changed = true
	}
	if a.Fee < 0 || (a.Status != StatusPresent && a.Fee != 0) {
		a.Fee = 0
		changed = true
	}
	return changed
}

// Timestamp UTC, millisecond precision, the resolution stored in the document
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
