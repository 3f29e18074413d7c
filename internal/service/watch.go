package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/sandeepkv93/choresd/internal/model"
)

type hub struct {
	mu     sync.Mutex
	pubMu  sync.Mutex
	subs   map[int]chan []model.Task
	nextID int
	logger *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{subs: make(map[int]chan []model.Task), logger: logger}
}

func (h *hub) active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs) > 0
}

// subscribe registers before loading the first snapshot, under the publish
// lock, so no commit can fall between the two.
func (h *hub) subscribe(ctx context.Context, load func() ([]model.Task, error)) (<-chan []model.Task, error) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	ch := make(chan []model.Task, 1)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	initial, err := load()
	if err != nil {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		return nil, err
	}
	ch <- initial

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()
	return ch, nil
}

// publish loads a snapshot and hands it to every subscriber. Publishes are
// serialised and each loads after its own write, so the last delivered
// snapshot always reflects the latest commit.
func (h *hub) publish(load func() ([]model.Task, error)) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	snapshot, err := load()
	if err != nil {
		h.logger.Warn("task snapshot failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		offerLatest(ch, slices.Clone(snapshot))
	}
}

// offerLatest replaces any unread snapshot in ch with v.
func offerLatest(ch chan []model.Task, v []model.Task) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
