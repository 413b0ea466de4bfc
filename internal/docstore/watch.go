package docstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type snapshotter interface {
	FetchAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
}

func snapshotOf(ctx context.Context, s snapshotter, target Target) ([]Document, error) {
	if target.DocumentID == "" {
		return s.FetchAll(ctx, target.Collection)
	}
	doc, err := s.Get(ctx, target.Collection, target.DocumentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Document{}, nil
		}
		return nil, err
	}
	return []Document{doc}, nil
}

// listenFunc starts a change feed calling trigger with the id of every
// changed document of the target collection.
type listenFunc func(ctx context.Context, trigger func(id string)) (Unsubscribe, error)

// watch starts the change feed, then delivers the initial snapshot of
// target and re-reads it whenever the feed fires. Events arriving during
// the initial read queue a refresh. Bursts collapse into a single re-read
// since every delivery is a full snapshot.
func watch(ctx context.Context, s snapshotter, target Target, fn ChangeFunc, logger *slog.Logger, listen listenFunc) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	pending := make(chan struct{}, 1)
	stopFeed, err := listen(subCtx, func(id string) {
		if target.DocumentID != "" && id != target.DocumentID {
			return
		}
		select {
		case pending <- struct{}{}:
		default:
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}
	initial, err := snapshotOf(ctx, s, target)
	if err != nil {
		stopFeed()
		cancel()
		return nil, err
	}
	fn(initial)
	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case <-pending:
				snapshot, err := snapshotOf(subCtx, s, target)
				if err != nil {
					if subCtx.Err() != nil {
						return
					}
					logger.Warn("docstore refresh snapshot", slog.String("collection", target.Collection), slog.Any("error", err))
					continue
				}
				fn(snapshot)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			stopFeed()
			cancel()
		})
	}, nil
}
