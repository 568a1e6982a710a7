package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"usmbot/internal/domain/model"
)

type mockRepo struct {
	saved   []*model.Engagement
	prices  map[string]float64
	saveErr error
	ctxErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{prices: map[string]float64{}}
}

func (m *mockRepo) SaveEngagement(ctx context.Context, e *model.Engagement) error {
	m.ctxErr = ctx.Err()
	m.saved = append(m.saved, e)
	return m.saveErr
}

func (m *mockRepo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	m.prices[ex+":"+symbol] = price
	return nil
}

func (m *mockRepo) Close() error { return nil }

type mockObserver struct {
	seen []model.Outcome
}

func (m *mockObserver) ObserveEngagement(e *model.Engagement) {
	m.seen = append(m.seen, e.Outcome)
}

func TestJournalServiceRecord(t *testing.T) {
	repo := newMockRepo()
	obs := &mockObserver{}
	j := NewJournalService(repo, obs, nil)

	now := time.Now()
	e := &model.Engagement{ID: "e-1", Outcome: model.OutcomeSellRejected, BuyOrderID: "buy-1", StartedAt: now, FinishedAt: now.Add(10 * time.Second)}
	j.Record(context.Background(), e)

	if len(repo.saved) != 1 || repo.saved[0] != e {
		t.Fatalf("expected engagement saved, got %+v", repo.saved)
	}
	if len(obs.seen) != 1 || obs.seen[0] != model.OutcomeSellRejected {
		t.Errorf("observer not notified: %+v", obs.seen)
	}
}

func TestJournalServiceSaveErrorIsSwallowed(t *testing.T) {
	repo := newMockRepo()
	repo.saveErr = errors.New("disk full")
	obs := &mockObserver{}
	j := NewJournalService(repo, obs)

	j.Record(context.Background(), &model.Engagement{ID: "e-1", Outcome: model.OutcomeRestrictedOrders})

	if len(obs.seen) != 1 {
		t.Errorf("observer must run even when the store fails")
	}
}

func TestJournalServiceWithoutRepo(t *testing.T) {
	obs := &mockObserver{}
	NewJournalService(nil, obs).Record(context.Background(), &model.Engagement{ID: "e-1", Outcome: model.OutcomeQueryFailed})
	if len(obs.seen) != 1 {
		t.Errorf("expected observation without repo")
	}
}
