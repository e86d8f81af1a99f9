package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/username/duitdash/src/logger"
	"github.com/username/duitdash/src/store"
	"github.com/username/duitdash/src/utils"
)

type StreamHandler struct {
	notifier *store.Notifier
}

func NewStreamHandler(notifier *store.Notifier) *StreamHandler {
	return &StreamHandler{notifier: notifier}
}

// HandleStream serves change hints over Server-Sent Events. Each event names
// the collection that changed; the client re-fetches the full set. An
// optional ?collection= query narrows the feed to a single collection.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.SendJSONError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := h.notifier.Subscribe(userID, r.URL.Query().Get("collection"))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.L.Debug("SSE stream opened", "userID", userID)

	// Heartbeats keep proxies from reaping idle connections.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.L.Debug("SSE stream closed", "userID", userID)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case collection, open := <-sub.C:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: changed\ndata: %s\n\n", collection)
			flusher.Flush()
		}
	}
}
