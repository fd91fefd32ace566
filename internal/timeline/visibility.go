package timeline

import (
	"sort"
	"sync"
)

// Region is the rendered extent of one day bucket. Top and Height share the
// coordinate space of Layout.Anchor (rows for a terminal, pixels elsewhere).
type Region struct {
	Day    Day
	Top    int
	Height int
}

func (r Region) Bottom() int {
	return r.Top + r.Height
}

// Layout is one snapshot of the rendered buckets plus the reference edge the
// topmost day is measured against.
type Layout struct {
	Regions []Region
	Anchor  int
}

// LayoutSource delivers a Layout on every layout change. Subscribe returns a
// func that stops delivery.
type LayoutSource interface {
	Subscribe(fn func(Layout)) (cancel func())
}

// Tracker follows which day bucket sits at the reference edge and keeps the
// set of rendered bucket handles.
type Tracker struct {
	mu        sync.Mutex
	handles   map[Day]Region
	top       Day
	obs       *Observation
	listeners map[int]func(Day)
	nextID    int
}

func NewTracker() *Tracker {
	return &Tracker{
		handles:   make(map[Day]Region),
		listeners: make(map[int]func(Day)),
	}
}

// Observation is an active subscription of a Tracker to a LayoutSource.
type Observation struct {
	tracker *Tracker

	mu       sync.Mutex
	cancel   func()
	released bool
}

// Release stops observation and drops every rendered handle. It is safe to
// call more than once.
func (o *Observation) Release() {
	o.mu.Lock()
	if o.released {
		o.mu.Unlock()
		return
	}
	o.released = true
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	t := o.tracker
	t.mu.Lock()
	if t.obs == o {
		t.obs = nil
		t.handles = make(map[Day]Region)
		t.top = ""
	}
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Observe starts tracking layouts from src, replacing any previous
// observation.
func (t *Tracker) Observe(src LayoutSource) *Observation {
	t.mu.Lock()
	prev := t.obs
	t.mu.Unlock()
	if prev != nil {
		prev.Release()
	}

	obs := &Observation{tracker: t}
	t.mu.Lock()
	t.obs = obs
	t.mu.Unlock()

	cancel := src.Subscribe(func(l Layout) {
		t.update(obs, l)
	})

	obs.mu.Lock()
	if obs.released {
		obs.mu.Unlock()
		cancel()
		return obs
	}
	obs.cancel = cancel
	obs.mu.Unlock()
	return obs
}

// OnTopDateChange registers fn to be called with the new topmost day each
// time it changes.
func (t *Tracker) OnTopDateChange(fn func(Day)) (remove func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// IsMaterialized reports whether a bucket for d is currently rendered, even
// if that bucket is empty.
func (t *Tracker) IsMaterialized(d Day) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.handles[d]
	return ok
}

func (t *Tracker) Handle(d Day) (Region, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.handles[d]
	return r, ok
}

func (t *Tracker) Top() (Day, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.top, !t.top.IsZero()
}

func (t *Tracker) update(obs *Observation, l Layout) {
	t.mu.Lock()
	if t.obs != obs {
		t.mu.Unlock()
		return
	}

	handles := make(map[Day]Region, len(l.Regions))
	for _, r := range l.Regions {
		handles[r.Day] = r
	}
	t.handles = handles

	top, ok := topmostRegion(l)
	if !ok {
		t.top = ""
		t.mu.Unlock()
		return
	}
	if top == t.top {
		t.mu.Unlock()
		return
	}
	t.top = top
	fns := make([]func(Day), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(top)
	}
}

// topmostRegion picks the first region whose bottom edge lies past the
// anchor. When the anchor is below every region the last one wins.
func topmostRegion(l Layout) (Day, bool) {
	if len(l.Regions) == 0 {
		return "", false
	}
	regions := make([]Region, len(l.Regions))
	copy(regions, l.Regions)
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Top < regions[j].Top })

	for _, r := range regions {
		if r.Bottom() > l.Anchor {
			return r.Day, true
		}
	}
	return regions[len(regions)-1].Day, true
}
