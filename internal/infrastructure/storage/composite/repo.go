package composite

import (
	"context"
	"errors"
	"time"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/model"
)

type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) SaveEngagement(ctx context.Context, e *model.Engagement) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveEngagement(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertLatestPrice(ctx, ex, symbol, price, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ListEngagements 读第一个支持查询的存储
func (r *Repo) ListEngagements(ctx context.Context, since time.Time, limit int) ([]*model.Engagement, error) {
	for _, repo := range r.repos {
		if l, ok := repo.(port.EngagementLister); ok {
			return l.ListEngagements(ctx, since, limit)
		}
	}
	return nil, errors.New("no queryable engagement store configured")
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ port.Repository       = (*Repo)(nil)
	_ port.EngagementLister = (*Repo)(nil)
)
