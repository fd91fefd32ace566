// Package timeline implements the day-bucketed transaction feed: windowed
// fetches merged into one descending cache, a tracker for the topmost
// visible day, and refresh-on-demand for jumps to arbitrary dates.
package timeline

import (
	"context"
	"time"
)

// Timeline is the control surface handed to a UI host.
type Timeline struct {
	ctrl      *Controller
	tracker   *Tracker
	refresher *Refresher
	obs       *Observation
}

func New(source Source, cfg Config) *Timeline {
	ctrl := NewController(source, cfg)
	tracker := NewTracker()
	return &Timeline{
		ctrl:      ctrl,
		tracker:   tracker,
		refresher: NewRefresher(ctrl, tracker),
	}
}

func (t *Timeline) Controller() *Controller { return t.ctrl }
func (t *Timeline) Tracker() *Tracker       { return t.tracker }
func (t *Timeline) Refresher() *Refresher   { return t.refresher }

// Observe starts visibility tracking against src. Close releases it.
func (t *Timeline) Observe(src LayoutSource) *Observation {
	t.obs = t.tracker.Observe(src)
	return t.obs
}

func (t *Timeline) RefreshIfNeeded(ctx context.Context, date time.Time) (bool, error) {
	return t.refresher.RefreshIfNeeded(ctx, date)
}

func (t *Timeline) FetchOlder(ctx context.Context) error {
	return t.ctrl.FetchOlder(ctx)
}

func (t *Timeline) OnTopDateChange(fn func(Day)) (remove func()) {
	return t.tracker.OnTopDateChange(fn)
}

// Close stops observation and discards any in-flight completion.
func (t *Timeline) Close() {
	if t.obs != nil {
		t.obs.Release()
		t.obs = nil
	}
	t.ctrl.Close()
}
