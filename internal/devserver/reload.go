package devserver

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

// broadcaster pushes a reload event to every connected page
type broadcaster struct {
	mu      sync.Mutex
	clients map[chan struct{}]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{clients: make(map[chan struct{}]struct{})}
}

func (b *broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}

func (b *broadcaster) subscribe() chan struct{} {
	c := make(chan struct{}, 1)
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

func (b *broadcaster) unsubscribe(c chan struct{}) {
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
}

func (b *broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	c := b.subscribe()
	defer b.unsubscribe(c)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c:
			if _, err := w.Write([]byte("data: reload\n\n")); err != nil {
				log.Debug().Err(err).Msg("Reload client went away")
				return
			}
			flusher.Flush()
		}
	}
}
