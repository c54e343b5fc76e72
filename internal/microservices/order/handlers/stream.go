package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/domain/dao"
)

type StreamHandler struct {
	events Subscriber
	lg     *logger.Logger
}

func NewStreamHandler(events Subscriber, lg *logger.Logger) *StreamHandler {
	return &StreamHandler{events: events, lg: lg}
}

// Stream serves lifecycle events as server-sent events. The listener is
// removed when the client goes away or the broadcaster drops it.
func (sh *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// the stream outlives the server's read and write timeouts
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		sh.lg.Error("stream_flush_unsupported", err, nil)
		return
	}

	sub := sh.events.Subscribe()
	defer sh.events.Unsubscribe(sub)
	sh.lg.Debug("stream_opened", map[string]any{"listener": sub.ID(), "remote": r.RemoteAddr})

	for {
		select {
		case <-r.Context().Done():
			sh.lg.Debug("stream_closed", map[string]any{"listener": sub.ID()})
			return
		case <-sub.Done():
			sh.lg.Debug("stream_dropped", map[string]any{"listener": sub.ID()})
			return
		case ev := <-sub.Events():
			if err := writeEvent(w, ev); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w io.Writer, ev dao.Event) error {
	if ev.IsHeartbeat() {
		_, err := io.WriteString(w, ":heartbeat\n\n")
		return err
	}
	data, err := json.Marshal(ev.Order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
	return err
}
