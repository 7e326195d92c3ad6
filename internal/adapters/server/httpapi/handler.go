// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanschultz/pulse/internal/adapters/server/common"
	"github.com/evanschultz/pulse/internal/app"
	"github.com/evanschultz/pulse/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	board         common.BoardService
	notifications common.NotificationService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// statusChangeBody is the JSON body for POST `/tasks/{id}/status`.
type statusChangeBody struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by,omitempty"`
}

// NewHandler constructs one HTTP API adapter from board and notification services.
func NewHandler(board common.BoardService, notifications common.NotificationService) *Handler {
	return &Handler{
		board:         board,
		notifications: notifications,
	}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch {
	case path == "notifications":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListNotifications(w, r)
		return
	default:
		if projectID, surface, ok := resolveProjectSurface(path); ok {
			if r.Method != http.MethodGet {
				writeMethodNotAllowed(w, http.MethodGet)
				return
			}
			h.handleProjectSurface(w, r, projectID, surface)
			return
		}
		if taskID, ok := resolveSubresourceID(path, "tasks", "status"); ok {
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleChangeTaskStatus(w, r, taskID)
			return
		}
		if notificationID, ok := resolveSubresourceID(path, "notifications", "read"); ok {
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleMarkNotificationRead(w, r, notificationID)
			return
		}
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleProjectSurface serves GET `/projects/{id}/{board|summary|timeline}`.
func (h *Handler) handleProjectSurface(w http.ResponseWriter, r *http.Request, projectID, surface string) {
	if h.board == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "board service is not configured",
		})
		return
	}
	switch surface {
	case "board":
		views, err := h.board.BoardSnapshot(r.Context(), common.BoardRequest{
			ProjectID: projectID,
			SortKey:   strings.TrimSpace(r.URL.Query().Get("sort")),
			SortOrder: strings.TrimSpace(r.URL.Query().Get("order")),
		})
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": views})
	case "timeline":
		views, err := h.board.Timeline(r.Context(), projectID)
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": views})
	case "summary":
		summary, err := h.board.ProjectSummary(r.Context(), projectID)
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleChangeTaskStatus serves POST `/tasks/{id}/status`.
func (h *Handler) handleChangeTaskStatus(w http.ResponseWriter, r *http.Request, taskID string) {
	if h.board == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "board service is not configured",
		})
		return
	}
	var body statusChangeBody
	if err := decodeJSONBody(r.Context(), w, r, &body); err != nil {
		writeErrorFrom(w, err)
		return
	}
	view, err := h.board.ChangeTaskStatus(r.Context(), common.StatusChangeRequest{
		TaskID:    taskID,
		Status:    body.Status,
		ChangedBy: body.ChangedBy,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleListNotifications serves GET `/notifications`.
func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if h.notifications == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "notification service is not configured",
		})
		return
	}
	unreadOnly := false
	if raw := strings.TrimSpace(r.URL.Query().Get("unread")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "unread must be a boolean",
			})
			return
		}
		unreadOnly = parsed
	}
	records, err := h.notifications.ListNotifications(r.Context(), common.NotificationsRequest{
		UserID:     strings.TrimSpace(r.URL.Query().Get("user_id")),
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": records})
}

// handleMarkNotificationRead serves POST `/notifications/{id}/read`.
func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	if h.notifications == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "notification service is not configured",
		})
		return
	}
	if err := h.notifications.MarkNotificationRead(r.Context(), notificationID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": notificationID, "is_read": true})
}

// resolveProjectSurface parses `/projects/{id}/{surface}` and returns both segments.
func resolveProjectSurface(path string) (string, string, bool) {
	const prefix = "projects/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	id, surface, ok := strings.Cut(rest, "/")
	if !ok {
		return "", "", false
	}
	id = strings.TrimSpace(id)
	surface = strings.TrimSpace(surface)
	if id == "" || surface == "" || strings.Contains(surface, "/") {
		return "", "", false
	}
	return id, surface, true
}

// resolveSubresourceID parses `/{collection}/{id}/{action}` and returns `{id}`.
func resolveSubresourceID(path, collection, action string) (string, bool) {
	prefix := collection + "/"
	suffix := "/" + action
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix))
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest),
		errors.Is(err, app.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidID):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
