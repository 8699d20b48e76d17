package services

import (
	"context"
	"strings"

	"tabung/internal/core"
)

type GoalInput struct {
	Name         string
	TargetAmount core.Money
	Deadline     core.Date // optional
}

func (l *Ledger) ListGoals(ctx context.Context) ([]core.Goal, error) {
	var goals []core.Goal
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		goals, err = tx.ListGoals(ctx)
		return err
	})
	return goals, err
}

func (l *Ledger) AddGoal(ctx context.Context, in GoalInput) (int64, error) {
	g := core.Goal{Name: strings.TrimSpace(in.Name), TargetAmount: in.TargetAmount, Deadline: in.Deadline}
	if err := g.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := l.store.Update(ctx, func(tx Tx) error {
		var err error
		id, err = tx.InsertGoal(ctx, g)
		return err
	})
	return id, err
}

func (l *Ledger) DeleteGoal(ctx context.Context, id int64) error {
	return l.store.Update(ctx, func(tx Tx) error {
		return tx.DeleteGoal(ctx, id)
	})
}
