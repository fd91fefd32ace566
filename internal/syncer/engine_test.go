package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSyncer struct {
	collection string
	hasData    bool
	lastOK     time.Time

	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeSyncer) Collection() string { return f.collection }

func (f *fakeSyncer) HasCachedData(context.Context) (bool, error) { return f.hasData, nil }

func (f *fakeSyncer) LastSuccessAt(context.Context) (time.Time, bool, error) {
	return f.lastOK, !f.lastOK.IsZero(), nil
}

func (f *fakeSyncer) Sync(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeSyncer) syncCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func collectEvents() (func(Event), <-chan Event) {
	ch := make(chan Event, 32)
	return func(evt Event) { ch <- evt }, ch
}

func waitEvent(t *testing.T, ch <-chan Event, want EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == want {
				return evt
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestNewRejectsBadRegistry(t *testing.T) {
	if _, err := New(Config{}, nil, nil); err == nil {
		t.Fatal("New() with no syncers error = nil, want error")
	}
	dup := []Syncer{&fakeSyncer{collection: "a"}, &fakeSyncer{collection: "a"}}
	if _, err := New(Config{}, dup, nil); err == nil {
		t.Fatal("New() with duplicate syncers error = nil, want error")
	}
	if _, err := New(Config{}, []Syncer{&fakeSyncer{}}, nil); err == nil {
		t.Fatal("New() with empty collection error = nil, want error")
	}
}

func TestEnterViewSyncsWhenEmpty(t *testing.T) {
	s := &fakeSyncer{collection: "accounts"}
	onEvent, events := collectEvents()
	engine, err := New(Config{}, []Syncer{s}, onEvent)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if err := engine.EnterView(context.Background(), "accounts"); err != nil {
		t.Fatalf("EnterView() unexpected error: %v", err)
	}
	defer engine.LeaveView()

	waitEvent(t, events, EventSyncOK)
	if engine.activeCollection() != "accounts" {
		t.Fatalf("activeCollection() = %q, want accounts", engine.activeCollection())
	}

	if err := engine.ManualRefresh("accounts"); err != nil {
		t.Fatalf("ManualRefresh() unexpected error: %v", err)
	}
	waitEvent(t, events, EventSyncOK)
	if got := s.syncCalls(); got != 2 {
		t.Fatalf("sync calls = %d, want 2", got)
	}
}

func TestEnterViewSkipsFreshCollection(t *testing.T) {
	s := &fakeSyncer{collection: "accounts", hasData: true, lastOK: time.Now()}
	engine, err := New(Config{StaleTTL: time.Hour}, []Syncer{s}, nil)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if err := engine.EnterView(context.Background(), "accounts"); err != nil {
		t.Fatalf("EnterView() unexpected error: %v", err)
	}
	engine.LeaveView()

	if got := s.syncCalls(); got != 0 {
		t.Fatalf("sync calls = %d, want 0", got)
	}
	if engine.activeCollection() != "" {
		t.Fatalf("activeCollection() after leave = %q, want empty", engine.activeCollection())
	}
}

func TestFailedSyncRetriesWithBackoff(t *testing.T) {
	s := &fakeSyncer{collection: "accounts", errs: []error{errors.New("offline")}}
	onEvent, events := collectEvents()
	engine, err := New(Config{Backoff: []time.Duration{10 * time.Millisecond}}, []Syncer{s}, onEvent)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if err := engine.EnterView(context.Background(), "accounts"); err != nil {
		t.Fatalf("EnterView() unexpected error: %v", err)
	}
	defer engine.LeaveView()

	failed := waitEvent(t, events, EventSyncFailed)
	if failed.RetryIn != 10*time.Millisecond {
		t.Fatalf("RetryIn = %s, want 10ms", failed.RetryIn)
	}
	waitEvent(t, events, EventSyncOK)
}

func TestManualRefreshRequiresActiveView(t *testing.T) {
	engine, err := New(Config{}, []Syncer{&fakeSyncer{collection: "accounts"}}, nil)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if err := engine.ManualRefresh("accounts"); err == nil {
		t.Fatal("ManualRefresh() without view error = nil, want error")
	}
	if err := engine.EnterView(context.Background(), "missing"); err == nil {
		t.Fatal("EnterView() unknown collection error = nil, want error")
	}
}

func TestGroupSyncerStaleness(t *testing.T) {
	older := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	g := newGroupSyncer("dictionaries",
		&fakeSyncer{collection: "a", hasData: true, lastOK: newer},
		&fakeSyncer{collection: "b", hasData: true, lastOK: older},
	)

	has, err := g.HasCachedData(context.Background())
	if err != nil || !has {
		t.Fatalf("HasCachedData() = %v, %v, want true", has, err)
	}
	at, ok, err := g.LastSuccessAt(context.Background())
	if err != nil || !ok || !at.Equal(older) {
		t.Fatalf("LastSuccessAt() = %s, %v, %v, want %s", at, ok, err, older)
	}

	g.members = append(g.members, &fakeSyncer{collection: "c"})
	if has, _ := g.HasCachedData(context.Background()); has {
		t.Fatal("HasCachedData() = true with an empty member, want false")
	}
	if _, ok, _ := g.LastSuccessAt(context.Background()); ok {
		t.Fatal("LastSuccessAt() ok with a never-synced member, want false")
	}
}

func TestFetchAllByIDKeepsOrder(t *testing.T) {
	ids := []string{"c", "a", "b", "d"}
	got, err := fetchAllByID(context.Background(), ids, 2, func(_ context.Context, id string) (string, error) {
		return "v-" + id, nil
	})
	if err != nil {
		t.Fatalf("fetchAllByID() unexpected error: %v", err)
	}
	want := []string{"v-c", "v-a", "v-b", "v-d"}
	if !equalStrings(got, want) {
		t.Fatalf("fetchAllByID() = %v, want %v", got, want)
	}
}

func TestFetchAllByIDReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := fetchAllByID(context.Background(), []string{"a", "b"}, 1, func(_ context.Context, id string) (int, error) {
		if id == "b" {
			return 0, boom
		}
		return 1, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("fetchAllByID() error = %v, want %v", err, boom)
	}
}
