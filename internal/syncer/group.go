package syncer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// groupSyncer runs several syncers as one collection. It is stale when any
// member is stale.
type groupSyncer struct {
	collection string
	members    []Syncer
}

func newGroupSyncer(collection string, members ...Syncer) *groupSyncer {
	return &groupSyncer{collection: collection, members: members}
}

func (g *groupSyncer) Collection() string {
	return g.collection
}

func (g *groupSyncer) HasCachedData(ctx context.Context) (bool, error) {
	for _, m := range g.members {
		ok, err := m.HasCachedData(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// LastSuccessAt is the oldest member success.
func (g *groupSyncer) LastSuccessAt(ctx context.Context) (time.Time, bool, error) {
	var oldest time.Time
	for _, m := range g.members {
		at, ok, err := m.LastSuccessAt(ctx)
		if err != nil || !ok {
			return time.Time{}, false, err
		}
		if oldest.IsZero() || at.Before(oldest) {
			oldest = at
		}
	}
	return oldest, !oldest.IsZero(), nil
}

func (g *groupSyncer) Sync(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, m := range g.members {
		eg.Go(func() error {
			return m.Sync(egCtx)
		})
	}
	return eg.Wait()
}
