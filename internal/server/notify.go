package server

import (
	"encoding/json"
	"net/http"
)

// NotificationSink accepts player notification payloads.
// Implemented by [signal.PushSource].
type NotificationSink interface {
	Deliver(note map[string]string)
}

// NotifyHandler ingests push notifications from the player's notification
// relay over HTTP. Payloads are flat string maps in the shape the push
// source parses.
type NotifyHandler struct {
	sink NotificationSink
}

// NewNotifyHandler creates a handler delivering payloads to the given sink.
func NewNotifyHandler(sink NotificationSink) *NotifyHandler {
	return &NotifyHandler{sink: sink}
}

// Routes returns the HTTP routes this handler serves.
func (h *NotifyHandler) Routes() []string {
	return []string{"/notify"}
}

// ServeHTTP accepts one POSTed notification payload.
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var note map[string]string
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		http.Error(w, "invalid notification payload", http.StatusBadRequest)
		return
	}

	h.sink.Deliver(note)
	w.WriteHeader(http.StatusAccepted)
}
