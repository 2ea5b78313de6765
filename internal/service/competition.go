package service

import (
	"context"

	"GolfSync/internal/errs"
	"GolfSync/internal/model"
)

// AddCompetition creates a competition; date is YYYY-MM-DD
func (e *Engine) AddCompetition(ctx context.Context, title, date string) (model.Competition, error) {
	c, err := model.NewCompetition(e.newID(), title, date, e.now())
	if err != nil {
		return model.Competition{}, err
	}
	err = e.mutate(ctx, func(doc *model.Aggregate) error {
		doc.Competitions = append(doc.Competitions, c)
		return nil
	})
	if err != nil {
		return model.Competition{}, err
	}
	e.logger.WithField("competition_id", c.ID).Info("competition added")
	return c, nil
}

func (e *Engine) UpdateCompetition(ctx context.Context, id, title, date string) (model.Competition, error) {
	var updated model.Competition
	err := e.mutate(ctx, func(doc *model.Aggregate) error {
		i := doc.FindCompetition(id)
		if i < 0 {
			return errs.NotFound("competition", id)
		}
		if err := doc.Competitions[i].Update(title, date); err != nil {
			return err
		}
		updated = doc.Competitions[i]
		return nil
	})
	if err != nil {
		return model.Competition{}, err
	}
	return updated, nil
}

// DeleteCompetition removes the competition and its attendance rows
func (e *Engine) DeleteCompetition(ctx context.Context, id string) error {
	var removed int
	err := e.mutate(ctx, func(doc *model.Aggregate) error {
		n, ok := doc.RemoveCompetition(id)
		if !ok {
			return errs.NotFound("competition", id)
		}
		removed = n
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.WithField("competition_id", id).WithField("attendance_removed", removed).Info("competition deleted")
	return nil
}

func (e *Engine) Competitions() []model.Competition {
	var out []model.Competition
	e.read(func(doc *model.Aggregate) {
		out = append(make([]model.Competition, 0, len(doc.Competitions)), doc.Competitions...)
	})
	return out
}

func (e *Engine) Competition(id string) (model.Competition, error) {
	var (
		c   model.Competition
		err error
	)
	e.read(func(doc *model.Aggregate) {
		i := doc.FindCompetition(id)
		if i < 0 {
			err = errs.NotFound("competition", id)
			return
		}
		c = doc.Competitions[i]
	})
	return c, err
}
