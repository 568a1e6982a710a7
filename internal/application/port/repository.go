package port

import (
	"context"
	"time"

	"usmbot/internal/domain/model"
)

type Repository interface {
	// Engagement operations
	SaveEngagement(ctx context.Context, e *model.Engagement) error

	// Price operations
	UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error

	// Connection management
	Close() error
}

// EngagementLister is implemented by stores that can read the journal back.
type EngagementLister interface {
	ListEngagements(ctx context.Context, since time.Time, limit int) ([]*model.Engagement, error)
}
