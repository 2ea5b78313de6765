package service

import (
	"GolfSync/internal/errs"
	"GolfSync/internal/model"
)

// ParticipantReport attendance history and fee total of one participant
func (e *Engine) ParticipantReport(id string) (model.ParticipantReport, error) {
	var (
		report model.ParticipantReport
		err    error
	)
	e.read(func(doc *model.Aggregate) {
		i := doc.FindParticipant(id)
		if i < 0 {
			err = errs.NotFound("participant", id)
			return
		}
		report = doc.ParticipantSummary(i)
	})
	return report, err
}

// CompetitionReport status counts and fee total of one competition
func (e *Engine) CompetitionReport(id string) (model.CompetitionReport, error) {
	var (
		report model.CompetitionReport
		err    error
	)
	e.read(func(doc *model.Aggregate) {
		i := doc.FindCompetition(id)
		if i < 0 {
			err = errs.NotFound("competition", id)
			return
		}
		report = doc.CompetitionSummary(i)
	})
	return report, err
}

// Export backup document stamped with the current time
func (e *Engine) Export() model.ExportDocument {
	var out model.ExportDocument
	e.read(func(doc *model.Aggregate) {
		out = doc.Export(e.now())
	})
	return out
}
