package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"usmbot/internal/domain/model"
)

func TestSafetyGateAllEmpty(t *testing.T) {
	gw := newMockGateway()
	gate := NewSafetyGate(gw, 0)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return fixed }

	ok, err := gate.CanProceed(context.Background())
	if err != nil {
		t.Fatalf("CanProceed failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected gate to open with no orders")
	}
	if len(gw.listCalls) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(gw.listCalls))
	}
	wantBefore := fixed.Add(-1000 * time.Hour)
	for i, status := range []model.OrderStatus{model.OrderStatusOpen, model.OrderStatusPending, model.OrderStatusActive} {
		if gw.listCalls[i].status != status {
			t.Errorf("query %d: expected %s, got %s", i, status, gw.listCalls[i].status)
		}
		if !gw.listCalls[i].before.Equal(wantBefore) {
			t.Errorf("query %d: expected before %v, got %v", i, wantBefore, gw.listCalls[i].before)
		}
	}
}

func TestSafetyGateCombinations(t *testing.T) {
	statuses := []model.OrderStatus{model.OrderStatusOpen, model.OrderStatusPending, model.OrderStatusActive}
	// 遍历 open/pending/active 是否非空的全部 8 种组合
	for mask := 0; mask < 8; mask++ {
		gw := newMockGateway()
		firstNonEmpty := -1
		for i, s := range statuses {
			if mask&(1<<i) != 0 {
				gw.orders[s] = []model.Order{{ID: string(s) + "-1", Status: s}}
				if firstNonEmpty < 0 {
					firstNonEmpty = i
				}
			}
		}

		ok, err := NewSafetyGate(gw, 0).CanProceed(context.Background())
		if err != nil {
			t.Fatalf("mask %03b: unexpected error %v", mask, err)
		}
		if ok != (mask == 0) {
			t.Errorf("mask %03b: expected ok=%v, got %v", mask, mask == 0, ok)
		}
		wantCalls := 3
		if firstNonEmpty >= 0 {
			wantCalls = firstNonEmpty + 1
		}
		if len(gw.listCalls) != wantCalls {
			t.Errorf("mask %03b: expected %d queries (short-circuit), got %d", mask, wantCalls, len(gw.listCalls))
		}
	}
}

func TestSafetyGateQueryError(t *testing.T) {
	gw := newMockGateway()
	gw.listErr[model.OrderStatusActive] = errors.New("malformed response")

	ok, err := NewSafetyGate(gw, 0).CanProceed(context.Background())
	if ok {
		t.Fatalf("gate must not open when a query fails")
	}
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %T %v", err, err)
	}
	if qe.Op != "list active orders" {
		t.Errorf("unexpected op %q", qe.Op)
	}
}
