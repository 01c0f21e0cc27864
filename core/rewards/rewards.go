// Package rewards is the screen state of the rewards a teacher gave one student.
package rewards

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/store"
)

var errNoRewardID = errors.New("server did not return the new reward")

// Service is the part of client.Client the rewards screen uses.
type Service interface {
	GetRewards(ctx context.Context, studentID int) (client.Result[[]models.Reward], error)
	CreateReward(ctx context.Context, data models.NewReward) (client.Result[models.Reward], error)
	DeleteReward(ctx context.Context, rewardID int) (client.Result[models.Reward], error)
}

type Rewards struct {
	svc       Service
	studentID int
	*store.Store[models.Reward]
}

func New(svc Service, studentID int) *Rewards {
	return &Rewards{
		svc:       svc,
		studentID: studentID,
		Store:     store.New[models.Reward](),
	}
}

func (r *Rewards) Load(ctx context.Context) error {
	return r.Store.Load(ctx, func(ctx context.Context) ([]models.Reward, error) {
		res, err := r.svc.GetRewards(ctx, r.studentID)
		return res.Data, err
	})
}

// Give rewards the student, optionally for completing a sheet.
func (r *Rewards) Give(ctx context.Context, name string, sheetID int) (models.Reward, error) {
	return r.Store.Create(ctx, func(ctx context.Context) (models.Reward, error) {
		res, err := r.svc.CreateReward(ctx, models.NewReward{StudentID: r.studentID, SheetID: sheetID, Name: name})
		if err != nil {
			return models.Reward{}, err
		}
		if res.Data.ID == 0 {
			return models.Reward{}, errNoRewardID
		}
		return res.Data, nil
	})
}

func (r *Rewards) Revoke(ctx context.Context, id int, confirm store.Confirmer) (bool, error) {
	rwd, ok := r.Store.Get(id)
	if !ok {
		return false, store.ErrNotFound
	}
	prompt := fmt.Sprintf("Are you sure you want to revoke %s?", rwd.Name)
	return r.Store.Remove(ctx, id, prompt, confirm, func(ctx context.Context, cur models.Reward) error {
		_, err := r.svc.DeleteReward(ctx, cur.ID)
		return err
	})
}
