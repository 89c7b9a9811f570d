package panel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nao1215/pageguard/internal/host"
	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/nao1215/pageguard/internal/store"
)

type fakePlatform struct {
	tab        host.Tab
	tabErr     error
	info       snapshot.PageInfo
	collectErr error
	collected  []string
}

func (f *fakePlatform) ActiveTab(context.Context) (host.Tab, error) {
	if f.tabErr != nil {
		return host.Tab{}, f.tabErr
	}
	return f.tab, nil
}

func (f *fakePlatform) CollectPage(_ context.Context, tabID string) (snapshot.PageInfo, error) {
	f.collected = append(f.collected, tabID)
	if f.collectErr != nil {
		return snapshot.PageInfo{}, f.collectErr
	}
	return f.info, nil
}

type brokenStore struct {
	store.Store
}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() snapshot.PageSnapshot {
	return snapshot.PageSnapshot{
		URL:                   "https://example.com/login",
		Protocol:              "https:",
		CookieCount:           3,
		ScriptCount:           5,
		ThirdPartyScriptCount: 2,
		HTTPSOnly:             true,
		Timestamp:             time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestPanel(t *testing.T, platform host.Platform, s store.Store) (*Panel, *snapshot.Repository) {
	t.Helper()
	repo := snapshot.NewRepository(s, discardLogger())
	return New(platform, repo, WithLogger(discardLogger()), WithReloadDelay(0)), repo
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("no data", func(t *testing.T) {
		t.Parallel()
		p, _ := newTestPanel(t, &fakePlatform{tab: host.Tab{ID: "1", URL: "https://example.com/"}}, store.NewMemoryStore())

		v := p.Load(context.Background())
		if v.State != StateNoData {
			t.Fatalf("State = %v, want %v", v.State, StateNoData)
		}
		if v.Message != MessageNoData {
			t.Errorf("Message = %q, want %q", v.Message, MessageNoData)
		}
		if v.Hostname != "example.com" {
			t.Errorf("Hostname = %q", v.Hostname)
		}
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		p, repo := newTestPanel(t, &fakePlatform{tab: host.Tab{ID: "1", URL: "https://example.com/"}}, store.NewMemoryStore())
		if err := repo.Save(context.Background(), "example.com", sampleSnapshot()); err != nil {
			t.Fatal(err)
		}

		v := p.Load(context.Background())
		if v.State != StateReady {
			t.Fatalf("State = %v, want %v", v.State, StateReady)
		}
		// 40 + (20-6) + (30-6) + 10
		if v.Assessment.Score != 88 {
			t.Errorf("Score = %d, want 88", v.Assessment.Score)
		}
		if v.Assessment.Status.Text != "Excellent" || v.Assessment.Status.Class != score.ClassGood {
			t.Errorf("Status = %+v", v.Assessment.Status)
		}
	})

	t.Run("malformed record reads as no data", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemoryStore()
		if err := s.Set(context.Background(), snapshot.Key("example.com"), []byte("{")); err != nil {
			t.Fatal(err)
		}
		p, _ := newTestPanel(t, &fakePlatform{tab: host.Tab{ID: "1", URL: "https://example.com/"}}, s)

		if v := p.Load(context.Background()); v.State != StateNoData {
			t.Errorf("State = %v, want %v", v.State, StateNoData)
		}
	})

	t.Run("active tab failure", func(t *testing.T) {
		t.Parallel()
		p, _ := newTestPanel(t, &fakePlatform{tabErr: host.ErrNoActiveTab}, store.NewMemoryStore())

		v := p.Load(context.Background())
		if v.State != StateError || v.Message != MessageError {
			t.Errorf("got %+v, want error view", v)
		}
	})

	t.Run("tab without hostname", func(t *testing.T) {
		t.Parallel()
		p, _ := newTestPanel(t, &fakePlatform{tab: host.Tab{ID: "1", URL: "about:blank"}}, store.NewMemoryStore())

		if v := p.Load(context.Background()); v.State != StateError {
			t.Errorf("State = %v, want %v", v.State, StateError)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		p, _ := newTestPanel(t, &fakePlatform{tab: host.Tab{ID: "1", URL: "https://example.com/"}}, brokenStore{})

		v := p.Load(context.Background())
		if v.State != StateError || v.Message != MessageError {
			t.Errorf("got %+v, want error view", v)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("recollects and reloads", func(t *testing.T) {
		t.Parallel()
		platform := &fakePlatform{
			tab: host.Tab{ID: "tab-7", URL: "http://example.org/"},
			info: snapshot.PageInfo{
				URL:           "http://example.org/",
				ScriptCount:   2,
				ScriptSources: []string{"https://cdn.other.net/a.js"},
			},
		}
		p, repo := newTestPanel(t, platform, store.NewMemoryStore())

		v, err := p.Refresh(context.Background())
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if len(platform.collected) != 1 || platform.collected[0] != "tab-7" {
			t.Errorf("collected = %v, want [tab-7]", platform.collected)
		}
		if v.State != StateReady {
			t.Fatalf("State = %v, want %v", v.State, StateReady)
		}
		// 0 + 20 + (30-3) + 10
		if v.Assessment.Score != 57 {
			t.Errorf("Score = %d, want 57", v.Assessment.Score)
		}
		snap, err := repo.Load(context.Background(), "example.org")
		if err != nil {
			t.Fatalf("stored snapshot: %v", err)
		}
		if snap.ThirdPartyScriptCount != 1 || snap.HTTPSOnly {
			t.Errorf("stored %+v", snap)
		}
	})

	t.Run("collection failure is returned", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("script injection refused")
		platform := &fakePlatform{tab: host.Tab{ID: "1", URL: "https://example.com/"}, collectErr: boom}
		p, repo := newTestPanel(t, platform, store.NewMemoryStore())

		if _, err := p.Refresh(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("Refresh() error = %v, want %v", err, boom)
		}
		if _, err := repo.Load(context.Background(), "example.com"); !errors.Is(err, snapshot.ErrNoData) {
			t.Errorf("snapshot stored despite failure: %v", err)
		}
	})

	t.Run("cancelled during reload delay", func(t *testing.T) {
		t.Parallel()
		platform := &fakePlatform{
			tab:  host.Tab{ID: "1", URL: "https://example.com/"},
			info: snapshot.PageInfo{URL: "https://example.com/"},
		}
		repo := snapshot.NewRepository(store.NewMemoryStore(), discardLogger())
		p := New(platform, repo, WithLogger(discardLogger()), WithReloadDelay(time.Hour))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := p.Refresh(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Refresh() error = %v, want context.Canceled", err)
		}
	})
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := map[State]string{
		StateLoading: "loading",
		StateNoData:  "no_data",
		StateError:   "error",
		StateReady:   "ready",
		State(42):    "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
