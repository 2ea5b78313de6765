package model

import "time"

// ParticipantReportEntry one competition as seen by a participant
type ParticipantReportEntry struct {
	Competition Competition      `json:"competition"`
	Status      AttendanceStatus `json:"status"`
	Fee         int              `json:"fee"`
}

// ParticipantReport attendance history and fees paid by one participant
type ParticipantReport struct {
	Participant  Participant              `json:"participant"`
	Entries      []ParticipantReportEntry `json:"entries"`
	PresentCount int                      `json:"presentCount"`
	TotalFee     int                      `json:"totalFee"` // sum of fees of present rows
}

// CompetitionReportEntry one participant at a competition
type CompetitionReportEntry struct {
	Participant Participant      `json:"participant"`
	Status      AttendanceStatus `json:"status"`
	Fee         int              `json:"fee"`
}

// CompetitionReport status counts and collected fees for one competition
type CompetitionReport struct {
	Competition  Competition              `json:"competition"`
	Entries      []CompetitionReportEntry `json:"entries"`
	PresentCount int                      `json:"presentCount"`
	AbsentCount  int                      `json:"absentCount"`
	PendingCount int                      `json:"pendingCount"` // includes participants without a row
	TotalFee     int                      `json:"totalFee"`
}

// ParticipantSummary builds the report of participant i (index into Participants)
func (a *Aggregate) ParticipantSummary(i int) ParticipantReport {
	p := a.Participants[i]
	report := ParticipantReport{
		Participant: p,
		Entries:     make([]ParticipantReportEntry, 0, len(a.Competitions)),
	}
	rows := a.AttendanceByParticipant(p.ID)
	for j, row := range rows {
		report.Entries = append(report.Entries, ParticipantReportEntry{
			Competition: a.Competitions[j],
			Status:      row.Status,
			Fee:         row.Fee,
		})
		if row.Status == StatusPresent {
			report.PresentCount++
			report.TotalFee += row.Fee
		}
	}
	return report
}

// CompetitionSummary builds the report of competition i (index into Competitions)
func (a *Aggregate) CompetitionSummary(i int) CompetitionReport {
	c := a.Competitions[i]
	report := CompetitionReport{
		Competition: c,
		Entries:     make([]CompetitionReportEntry, 0, len(a.Participants)),
	}
	rows := a.AttendanceByCompetition(c.ID)
	for j, row := range rows {
		report.Entries = append(report.Entries, CompetitionReportEntry{
			Participant: a.Participants[j],
			Status:      row.Status,
			Fee:         row.Fee,
		})
		switch row.Status {
		case StatusPresent:
			report.PresentCount++
			report.TotalFee += row.Fee
		case StatusAbsent:
			report.AbsentCount++
		default:
			report.PendingCount++
		}
	}
	return report
}

// ExportDocument standalone download of the three collections
type ExportDocument struct {
	Participants []Participant `json:"participants"`
	Competitions []Competition `json:"competitions"`
	Attendance   []Attendance  `json:"attendance"`
	ExportDate   time.Time     `json:"exportDate"`
}

// Export copies the collections into an export document stamped with now
func (a *Aggregate) Export(now time.Time) ExportDocument {
	c := a.Clone()
	return ExportDocument{
		Participants: c.Participants,
		Competitions: c.Competitions,
		Attendance:   c.Attendance,
		ExportDate:   Timestamp(now),
	}
}

// FileName download name dated by ExportDate
func (d ExportDocument) FileName() string {
	return ExportFileName(d.ExportDate)
}

// ExportFileName golf-competition-data-<YYYY-MM-DD>.json, date in UTC
func ExportFileName(now time.Time) string {
	return "golf-competition-data-" + now.UTC().Format(DateLayout) + ".json"
}
