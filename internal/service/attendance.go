package service

import (
	"context"

	"GolfSync/internal/errs"
	"GolfSync/internal/model"

	"github.com/sirupsen/logrus"
)

// SetAttendance upserts the status of a participant at a competition.
// Any status other than present stores fee 0; present with a nil fee keeps the stored fee.
func (e *Engine) SetAttendance(ctx context.Context, participantID, competitionID string, status model.AttendanceStatus, fee *int) (model.Attendance, error) {
	if !status.Valid() {
		return model.Attendance{}, errs.Invalid("status", "must be pending, absent or present")
	}
	if fee != nil && *fee < 0 {
		return model.Attendance{}, errs.Invalid("fee", "must not be negative")
	}

	var row model.Attendance
	err := e.mutate(ctx, func(doc *model.Aggregate) error {
		if err := checkRefs(doc, participantID, competitionID); err != nil {
			return err
		}
		next := doc.Lookup(participantID, competitionID)
		next.Status = status
		switch {
		case status != model.StatusPresent:
			next.Fee = 0
		case fee != nil:
			next.Fee = *fee
		}
		row = doc.UpsertAttendance(next)
		return nil
	})
	if err != nil {
		return model.Attendance{}, err
	}
	e.logger.WithFields(logrus.Fields{
		"participant_id": participantID,
		"competition_id": competitionID,
		"status":         row.Status,
		"fee":            row.Fee,
	}).Debug("attendance set")
	return row, nil
}

// SetAttendanceFee changes the fee of a row that is already present
func (e *Engine) SetAttendanceFee(ctx context.Context, participantID, competitionID string, fee int) (model.Attendance, error) {
	if fee < 0 {
		return model.Attendance{}, errs.Invalid("fee", "must not be negative")
	}

	var row model.Attendance
	err := e.mutate(ctx, func(doc *model.Aggregate) error {
		if err := checkRefs(doc, participantID, competitionID); err != nil {
			return err
		}
		i := doc.FindAttendance(participantID, competitionID)
		if i < 0 || doc.Attendance[i].Status != model.StatusPresent {
			return errs.Invalid("fee", "attendance is not marked present")
		}
		next := doc.Attendance[i]
		next.Fee = fee
		row = doc.UpsertAttendance(next)
		return nil
	})
	if err != nil {
		return model.Attendance{}, err
	}
	return row, nil
}

// RemoveAttendance deletes the stored row; the pair reads as pending afterwards.
// Removing a row that does not exist is a no-op and persists nothing.
func (e *Engine) RemoveAttendance(ctx context.Context, participantID, competitionID string) error {
	return e.mutate(ctx, func(doc *model.Aggregate) error {
		if !doc.RemoveAttendance(participantID, competitionID) {
			return errNoChange
		}
		return nil
	})
}

// Attendance the row for the pair, pending when nothing is stored
func (e *Engine) Attendance(participantID, competitionID string) model.Attendance {
	var row model.Attendance
	e.read(func(doc *model.Aggregate) {
		row = doc.Lookup(participantID, competitionID)
	})
	return row
}

// AttendanceByCompetition one row per participant
func (e *Engine) AttendanceByCompetition(competitionID string) ([]model.Attendance, error) {
	var (
		rows []model.Attendance
		err  error
	)
	e.read(func(doc *model.Aggregate) {
		if doc.FindCompetition(competitionID) < 0 {
			err = errs.NotFound("competition", competitionID)
			return
		}
		rows = doc.AttendanceByCompetition(competitionID)
	})
	return rows, err
}

// AttendanceByParticipant one row per competition
func (e *Engine) AttendanceByParticipant(participantID string) ([]model.Attendance, error) {
	var (
		rows []model.Attendance
		err  error
	)
	e.read(func(doc *model.Aggregate) {
		if doc.FindParticipant(participantID) < 0 {
			err = errs.NotFound("participant", participantID)
			return
		}
		rows = doc.AttendanceByParticipant(participantID)
	})
	return rows, err
}

func checkRefs(doc *model.Aggregate, participantID, competitionID string) error {
	if doc.FindParticipant(participantID) < 0 {
		return errs.NotFound("participant", participantID)
	}
	if doc.FindCompetition(competitionID) < 0 {
		return errs.NotFound("competition", competitionID)
	}
	return nil
}
