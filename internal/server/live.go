package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// liveEvent tells browsers showing a page to reload it.
type liveEvent struct {
	Type string `json:"type"`
	Page string `json:"page"`
}

// Hub fans record-change events out to websocket subscribers by page.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan liveEvent]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[string]map[chan liveEvent]struct{}), logger: logger}
}

// Publish notifies subscribers of page without blocking on slow readers.
func (h *Hub) Publish(page string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[page] {
		select {
		case ch <- liveEvent{Type: "refresh", Page: page}:
		default:
		}
	}
}

func (h *Hub) subscribe(page string) chan liveEvent {
	ch := make(chan liveEvent, 1)
	h.mu.Lock()
	if h.subs[page] == nil {
		h.subs[page] = make(map[chan liveEvent]struct{})
	}
	h.subs[page][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(page string, ch chan liveEvent) {
	h.mu.Lock()
	delete(h.subs[page], ch)
	if len(h.subs[page]) == 0 {
		delete(h.subs, page)
	}
	h.mu.Unlock()
}

// Subscribers counts the open connections for page.
func (h *Hub) Subscribers(page string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[page])
}

// ServeHTTP upgrades to a websocket and streams refresh events for the page
// named by the "page" query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		http.Error(w, "page is required", http.StatusBadRequest)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("live: websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ch := h.subscribe(page)
	defer h.unsubscribe(page, ch)

	// Clients never send; CloseRead cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev := <-ch:
			if err := h.write(ctx, conn, ev); err != nil {
				h.logger.Debug("live: write", zap.String("page", page), zap.Error(err))
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, ev liveEvent) error {
	return wsjson.Write(ctx, conn, ev)
}
