package timeline

import (
	"context"
	"time"
)

// Refresher fetches a window for an arbitrary date only when that date's
// bucket is not already rendered.
type Refresher struct {
	ctrl    *Controller
	tracker *Tracker
}

func NewRefresher(ctrl *Controller, tracker *Tracker) *Refresher {
	return &Refresher{ctrl: ctrl, tracker: tracker}
}

// Plan returns a jump request for date, or false when the day is already
// materialized and nothing should be fetched.
func (r *Refresher) Plan(date time.Time) (Request, bool) {
	if r.tracker.IsMaterialized(DayOf(date, r.ctrl.Location())) {
		return Request{}, false
	}
	return r.ctrl.BeginJump(date), true
}

// RefreshIfNeeded reports whether a jump fetch was performed.
func (r *Refresher) RefreshIfNeeded(ctx context.Context, date time.Time) (bool, error) {
	req, ok := r.Plan(date)
	if !ok {
		return false, nil
	}
	res := r.ctrl.Run(ctx, req)
	r.ctrl.Apply(res)
	return true, res.Err()
}
