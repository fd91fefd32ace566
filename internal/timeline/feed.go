package timeline

import "sync"

// LayoutFeed is an in-process LayoutSource. Hosts call Publish after each
// render or scroll; late subscribers receive the most recent layout.
type LayoutFeed struct {
	mu     sync.Mutex
	subs   map[int]func(Layout)
	nextID int
	last   *Layout
}

func NewLayoutFeed() *LayoutFeed {
	return &LayoutFeed{subs: make(map[int]func(Layout))}
}

func (f *LayoutFeed) Subscribe(fn func(Layout)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	var last *Layout
	if f.last != nil {
		l := *f.last
		last = &l
	}
	f.mu.Unlock()

	if last != nil {
		fn(*last)
	}

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *LayoutFeed) Publish(l Layout) {
	f.mu.Lock()
	f.last = &l
	fns := make([]func(Layout), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}

func (f *LayoutFeed) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
