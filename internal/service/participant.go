package service

import (
	"context"

	"GolfSync/internal/errs"
	"GolfSync/internal/model"
)

// AddParticipant creates a participant with a generated id
func (e *Engine) AddParticipant(ctx context.Context, name, email string) (model.Participant, error) {
	p, err := model.NewParticipant(e.newID(), name, email, e.now())
	if err != nil {
		return model.Participant{}, err
	}
	err = e.mutate(ctx, func(doc *model.Aggregate) error {
		doc.Participants = append(doc.Participants, p)
		return nil
	})
	if err != nil {
		return model.Participant{}, err
	}
	e.logger.WithField("participant_id", p.ID).Info("participant added")
	return p, nil
}

// UpdateParticipant replaces name and email
func (e *Engine) UpdateParticipant(ctx context.Context, id, name, email string) (model.Participant, error) {
	var updated model.Participant
	err := e.mutate(ctx, func(doc *model.Aggregate) error {
		i := doc.FindParticipant(id)
		if i < 0 {
			return errs.NotFound("participant", id)
		}
		if err := doc.Participants[i].Update(name, email); err != nil {
			return err
		}
		updated = doc.Participants[i]
		return nil
	})
	if err != nil {
		return model.Participant{}, err
	}
	return updated, nil
}

// DeleteParticipant removes the participant and its attendance rows in one step
func (e *Engine) DeleteParticipant(ctx context.Context, id string) error {
	var removed int
	err := e.mutate(ctx, func(doc *model.Aggregate) error {
		n, ok := doc.RemoveParticipant(id)
		if !ok {
			return errs.NotFound("participant", id)
		}
		removed = n
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.WithField("participant_id", id).WithField("attendance_removed", removed).Info("participant deleted")
	return nil
}

// Participants all participants in insertion order
func (e *Engine) Participants() []model.Participant {
	var out []model.Participant
	e.read(func(doc *model.Aggregate) {
		out = append(make([]model.Participant, 0, len(doc.Participants)), doc.Participants...)
	})
	return out
}

func (e *Engine) Participant(id string) (model.Participant, error) {
	var (
		p   model.Participant
		err error
	)
	e.read(func(doc *model.Aggregate) {
		i := doc.FindParticipant(id)
		if i < 0 {
			err = errs.NotFound("participant", id)
			return
		}
		p = doc.Participants[i]
	})
	return p, err
}
