package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hearthd/hearthd/storage"
	"github.com/hearthd/hearthd/upstream"
	"github.com/hearthd/hearthd/ws"
)

const (
	kanbanDocName        = "kanban"
	notificationsDocName = "notifications"
	maxNotifications     = 50
)

var processStart = time.Now()

// Health handles GET /health.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Timestamp: time.Now().UTC(),
		Uptime:    formatUptime(time.Since(processStart)),
	})
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

// GetKanban handles GET /kanban. An empty store yields an empty board.
func (a *API) GetKanban(w http.ResponseWriter, r *http.Request) {
	data, err := a.store.GetDocument(kanbanDocName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"todo": []any{}, "in_progress": []any{}, "done": []any{},
			})
			return
		}
		mapError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UpdateKanban handles POST /kanban: the board document is replaced
// wholesale and the new state is pushed to every connected client.
func (a *API) UpdateKanban(w http.ResponseWriter, r *http.Request) {
	board, ok := decodeJSON[map[string]any](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := a.putDoc(kanbanDocName, board); err != nil {
		mapError(w, err)
		return
	}
	if a.hub != nil {
		a.hub.Broadcast(ws.MessageTypeKanban, board)
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// ListNotifications handles GET /notifications.
func (a *API) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.loadNotifications())
}

// AddNotification handles POST /notifications: prepends to the feed,
// keeps the newest maxNotifications, and pushes the new entry.
func (a *API) AddNotification(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[AddNotificationRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if req.Type == "" {
		req.Type = "info"
	}
	notif := Notification{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	doc := a.loadNotifications()
	doc.Notifications = append([]Notification{notif}, doc.Notifications...)
	if len(doc.Notifications) > maxNotifications {
		doc.Notifications = doc.Notifications[:maxNotifications]
	}
	if err := a.putDoc(notificationsDocName, doc); err != nil {
		mapError(w, err)
		return
	}
	if a.hub != nil {
		a.hub.Broadcast(ws.MessageTypeNotification, notif)
	}
	writeJSON(w, http.StatusOK, AddNotificationResponse{Notification: notif})
}

// MarkNotificationRead handles POST /notifications/{id}/read.
func (a *API) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc := a.loadNotifications()
	found := false
	for i := range doc.Notifications {
		if doc.Notifications[i].ID == id {
			doc.Notifications[i].Read = true
			found = true
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err := a.putDoc(notificationsDocName, doc); err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (a *API) loadNotifications() NotificationsDoc {
	doc := NotificationsDoc{Notifications: []Notification{}}
	data, err := a.store.GetDocument(notificationsDocName)
	if err == nil {
		_ = json.Unmarshal(data, &doc)
	}
	return doc
}

// Weather handles GET /weather: a dumb proxy to the configured weather
// collaborator.
func (a *API) Weather(w http.ResponseWriter, r *http.Request) {
	a.proxyUpstream(w, r, a.weatherURL, "weather")
}

// InfraStatus handles GET /infra/status: a dumb proxy to the configured
// infrastructure-status collaborator.
func (a *API) InfraStatus(w http.ResponseWriter, r *http.Request) {
	a.proxyUpstream(w, r, a.infraURL, "infra status")
}

func (a *API) proxyUpstream(w http.ResponseWriter, r *http.Request, url, name string) {
	body, err := a.upstream.FetchJSON(r.Context(), url)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, name+" upstream not configured")
			return
		}
		writeError(w, http.StatusBadGateway, name+" upstream unavailable")
		return
	}
	writeJSON(w, http.StatusOK, body)
}
