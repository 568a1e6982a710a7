package container

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"usmbot/internal/domain/model"
	domainservice "usmbot/internal/domain/service"
	"usmbot/internal/infrastructure/config"
	infracontainer "usmbot/internal/infrastructure/container"
)

// fakeCoinbase 模拟一次成功的买入：买入前余额 0，买入后 0.0165
type fakeCoinbase struct {
	mu     sync.Mutex
	bought bool
	orders []string
}

func (f *fakeCoinbase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch r.Method + " " + r.URL.Path {
	case "GET /orders":
		_, _ = io.WriteString(w, `[]`)
	case "GET /accounts":
		balance := "0"
		if f.bought {
			balance = "0.0165"
		}
		_, _ = io.WriteString(w, `[{"id":"a","currency":"ETH","balance":"`+balance+`"}]`)
	case "GET /products/ETH-USD/ticker":
		_, _ = io.WriteString(w, `{"price":"3000.00"}`)
	case "POST /orders":
		body, _ := io.ReadAll(r.Body)
		f.orders = append(f.orders, string(body))
		if !f.bought {
			f.bought = true
			_, _ = io.WriteString(w, `{"id":"buy-1","side":"buy","status":"pending"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"sell-1","side":"sell","status":"open"}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestConfig(t *testing.T, restURL, twitterURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Trading.Asset = "ETH"
	cfg.Trading.Quote = "USD"
	cfg.Trading.FiatAmount = 50
	cfg.Trading.TriggerPhrase = "ultra sound money"
	cfg.Accounts = []config.AccountConfig{{Handle: "@BanklessHQ", ID: "1225557966142820354"}}
	cfg.Exchange.Coinbase.RestURL = restURL
	cfg.Social.Twitter.APIURL = twitterURL
	cfg.Storage.SQLite.Enabled = true
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "workflow.db")
	return cfg
}

func TestContainerServiceWorkflow(t *testing.T) {
	cb := &fakeCoinbase{}
	cbSrv := httptest.NewServer(cb)
	defer cbSrv.Close()

	twSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":"9","text":"ETH is Ultra Sound Money!"}],"meta":{"result_count":1}}`)
	}))
	defer twSrv.Close()

	infra, err := infracontainer.New(newTestConfig(t, cbSrv.URL, twSrv.URL))
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	creds := &config.Credentials{}
	creds.Coinbase.APIKey = "key"
	creds.Coinbase.APISecret = "c2VjcmV0"
	creds.Coinbase.Passphrase = "pass"
	creds.Twitter.BearerToken = "token"
	if err := infra.InitExchange(creds); err != nil {
		t.Fatalf("InitExchange failed: %v", err)
	}

	engineCfg := domainservice.DefaultEngineConfig()
	engineCfg.SettleDelay = time.Millisecond
	c := New(infra, engineCfg)
	defer c.Close()

	p, err := c.Poller()
	if err != nil {
		t.Fatalf("Poller failed: %v", err)
	}
	got := p.RunCycle(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 engagement, got %d", len(got))
	}
	if got[0].Outcome != model.OutcomeSellPlaced || got[0].SellPrice != "3300.00" {
		t.Fatalf("unexpected engagement %+v", got[0])
	}
	if len(cb.orders) != 2 {
		t.Errorf("expected buy and sell orders, got %v", cb.orders)
	}

	history, err := infra.Repository().ListEngagements(context.Background(), time.Time{}, 10)
	if err != nil {
		t.Fatalf("ListEngagements failed: %v", err)
	}
	if len(history) != 1 || history[0].SellOrderID != "sell-1" {
		t.Errorf("engagement not journaled: %+v", history)
	}

	if c.MarketRecorder() != nil {
		t.Errorf("market recorder must be nil when market_feed disabled")
	}
}

func TestContainerEngineRequiresExchange(t *testing.T) {
	infra, err := infracontainer.New(newTestConfig(t, "http://localhost", "http://localhost"))
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	c := New(infra, domainservice.DefaultEngineConfig())
	defer c.Close()

	if _, err := c.Engine(); err == nil {
		t.Errorf("expected error before InitExchange")
	}
	if _, err := c.Poller(); err == nil {
		t.Errorf("expected error before InitExchange")
	}
}
