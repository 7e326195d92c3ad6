package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evanschultz/pulse/internal/adapters/server/common"
	"github.com/evanschultz/pulse/internal/app"
)

// stubBoardService provides deterministic board responses for handler tests.
type stubBoardService struct {
	views       []common.TaskView
	summary     common.ProjectSummary
	changed     common.TaskView
	err         error
	lastBoard   common.BoardRequest
	lastStatus  common.StatusChangeRequest
	lastProject string
}

// BoardSnapshot records the request and returns the configured views.
func (s *stubBoardService) BoardSnapshot(_ context.Context, req common.BoardRequest) ([]common.TaskView, error) {
	s.lastBoard = req
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.TaskView(nil), s.views...), nil
}

// Timeline records the project and returns the configured views.
func (s *stubBoardService) Timeline(_ context.Context, projectID string) ([]common.TaskView, error) {
	s.lastProject = projectID
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.TaskView(nil), s.views...), nil
}

// ProjectSummary records the project and returns the configured summary.
func (s *stubBoardService) ProjectSummary(_ context.Context, projectID string) (common.ProjectSummary, error) {
	s.lastProject = projectID
	if s.err != nil {
		return common.ProjectSummary{}, s.err
	}
	return s.summary, nil
}

// ChangeTaskStatus records the request and returns the configured view.
func (s *stubBoardService) ChangeTaskStatus(_ context.Context, req common.StatusChangeRequest) (common.TaskView, error) {
	s.lastStatus = req
	if s.err != nil {
		return common.TaskView{}, s.err
	}
	return s.changed, nil
}

// stubNotificationService provides deterministic notification responses for handler tests.
type stubNotificationService struct {
	records  []common.NotificationRecord
	err      error
	lastList common.NotificationsRequest
	lastRead string
}

// ListNotifications records the request and returns fixture records.
func (s *stubNotificationService) ListNotifications(_ context.Context, req common.NotificationsRequest) ([]common.NotificationRecord, error) {
	s.lastList = req
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.NotificationRecord(nil), s.records...), nil
}

// MarkNotificationRead records the id.
func (s *stubNotificationService) MarkNotificationRead(_ context.Context, notificationID string) error {
	s.lastRead = notificationID
	return s.err
}

// TestHandlerBoardSnapshot verifies board response mapping and query parsing.
func TestHandlerBoardSnapshot(t *testing.T) {
	board := &stubBoardService{
		views: []common.TaskView{
			{ID: "t1", Title: "Ship release", Status: "in-progress", Progress: 50},
			{ID: "t2", Title: "Write docs", Status: "to-do"},
		},
	}
	handler := NewHandler(board, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1/board?sort=progress&order=desc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		Tasks []common.TaskView `json:"tasks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].ID != "t1" {
		t.Fatalf("tasks = %+v, want 2 entries starting with t1", got.Tasks)
	}
	if board.lastBoard.ProjectID != "p1" {
		t.Fatalf("project_id = %q, want p1", board.lastBoard.ProjectID)
	}
	if board.lastBoard.SortKey != "progress" || board.lastBoard.SortOrder != "desc" {
		t.Fatalf("sort = %q/%q, want progress/desc", board.lastBoard.SortKey, board.lastBoard.SortOrder)
	}
}

// TestHandlerProjectSurfaces verifies timeline and summary routing.
func TestHandlerProjectSurfaces(t *testing.T) {
	board := &stubBoardService{
		views:   []common.TaskView{{ID: "t1"}},
		summary: common.ProjectSummary{ID: "p1", Name: "Roadmap", Progress: 40, Risk: "Medium"},
	}
	handler := NewHandler(board, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p1/timeline", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("timeline status = %d, want %d", rec.Code, http.StatusOK)
	}
	if board.lastProject != "p1" {
		t.Fatalf("timeline project = %q, want p1", board.lastProject)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p1/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, want %d", rec.Code, http.StatusOK)
	}
	var summary common.ProjectSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if summary.Risk != "Medium" {
		t.Fatalf("risk = %q, want Medium", summary.Risk)
	}
}

// TestHandlerChangeTaskStatus verifies the status transition endpoint.
func TestHandlerChangeTaskStatus(t *testing.T) {
	board := &stubBoardService{
		changed: common.TaskView{ID: "t1", Status: "completed", Progress: 100},
	}
	handler := NewHandler(board, nil)

	body := strings.NewReader(`{"status":"Completed","changed_by":"u1"}`)
	req := httptest.NewRequest(http.MethodPost, "/tasks/t1/status", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if board.lastStatus.TaskID != "t1" || board.lastStatus.Status != "Completed" || board.lastStatus.ChangedBy != "u1" {
		t.Fatalf("request = %+v, want t1/Completed/u1", board.lastStatus)
	}
	var view common.TaskView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if view.Status != "completed" {
		t.Fatalf("status = %q, want completed", view.Status)
	}
}

// TestHandlerChangeTaskStatusRejectsMalformedBody verifies fail-closed body decoding.
func TestHandlerChangeTaskStatusRejectsMalformedBody(t *testing.T) {
	handler := NewHandler(&stubBoardService{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"status":`},
		{name: "unknown field", body: `{"status":"done","extra":true}`},
		{name: "trailing content", body: `{"status":"done"}{"again":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tasks/t1/status", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

// TestHandlerNotificationEndpoints verifies listing and mark-read routing.
func TestHandlerNotificationEndpoints(t *testing.T) {
	notifications := &stubNotificationService{
		records: []common.NotificationRecord{{ID: "n1", UserID: "u1", Message: "Alice changed task status from 'to-do' to 'completed'."}},
	}
	handler := NewHandler(nil, notifications)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=u1&unread=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}
	if notifications.lastList.UserID != "u1" || !notifications.lastList.UnreadOnly {
		t.Fatalf("list request = %+v, want u1/unread", notifications.lastList)
	}
	var got struct {
		Notifications []common.NotificationRecord `json:"notifications"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Notifications) != 1 || got.Notifications[0].ID != "n1" {
		t.Fatalf("notifications = %+v, want one n1 record", got.Notifications)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, want %d", rec.Code, http.StatusOK)
	}
	if notifications.lastRead != "n1" {
		t.Fatalf("marked id = %q, want n1", notifications.lastRead)
	}
}

// TestHandlerNotificationsRejectsBadUnreadFlag verifies the unread query guard.
func TestHandlerNotificationsRejectsBadUnreadFlag(t *testing.T) {
	handler := NewHandler(nil, &stubNotificationService{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=u1&unread=banana", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestHandlerRouteGuards verifies method and route rejection paths.
func TestHandlerRouteGuards(t *testing.T) {
	handler := NewHandler(&stubBoardService{}, &stubNotificationService{})

	cases := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantAllow  string
	}{
		{name: "board wrong method", method: http.MethodPost, target: "/projects/p1/board", wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET"},
		{name: "status wrong method", method: http.MethodGet, target: "/tasks/t1/status", wantStatus: http.StatusMethodNotAllowed, wantAllow: "POST"},
		{name: "notifications wrong method", method: http.MethodPost, target: "/notifications", wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET"},
		{name: "read wrong method", method: http.MethodGet, target: "/notifications/n1/read", wantStatus: http.StatusMethodNotAllowed, wantAllow: "POST"},
		{name: "unknown endpoint", method: http.MethodGet, target: "/widgets", wantStatus: http.StatusNotFound},
		{name: "unknown project surface", method: http.MethodGet, target: "/projects/p1/unknown", wantStatus: http.StatusNotFound},
		{name: "missing subresource id", method: http.MethodPost, target: "/tasks//status", wantStatus: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantAllow != "" && rec.Header().Get("Allow") != tc.wantAllow {
				t.Fatalf("Allow = %q, want %q", rec.Header().Get("Allow"), tc.wantAllow)
			}
		})
	}
}

// TestHandlerServicesUnavailable verifies 503 responses for unconfigured services.
func TestHandlerServicesUnavailable(t *testing.T) {
	handler := NewHandler(nil, nil)

	cases := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{name: "board", method: http.MethodGet, target: "/projects/p1/board"},
		{name: "status", method: http.MethodPost, target: "/tasks/t1/status", body: `{"status":"done"}`},
		{name: "notifications", method: http.MethodGet, target: "/notifications?user_id=u1"},
		{name: "mark read", method: http.MethodPost, target: "/notifications/n1/read"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body *strings.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			} else {
				body = strings.NewReader("")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, body))
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
		})
	}
}

// TestWriteErrorFromMappingBranches verifies error-to-status translation.
func TestWriteErrorFromMappingBranches(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "nil", err: nil, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "not found", err: app.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "invalid request", err: common.ErrInvalidRequest, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "invalid status", err: app.ErrInvalidStatus, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeErrorFrom(rec, tc.err)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
		})
	}
}

// TestResolveProjectSurface verifies project path parsing.
func TestResolveProjectSurface(t *testing.T) {
	cases := []struct {
		name        string
		path        string
		wantID      string
		wantSurface string
		wantOK      bool
	}{
		{name: "board", path: "projects/p1/board", wantID: "p1", wantSurface: "board", wantOK: true},
		{name: "summary", path: "projects/p-2/summary", wantID: "p-2", wantSurface: "summary", wantOK: true},
		{name: "missing surface", path: "projects/p1", wantOK: false},
		{name: "nested surface", path: "projects/p1/board/extra", wantOK: false},
		{name: "wrong prefix", path: "tasks/p1/board", wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, surface, ok := resolveProjectSurface(tc.path)
			if ok != tc.wantOK || id != tc.wantID || surface != tc.wantSurface {
				t.Fatalf("resolveProjectSurface(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tc.path, id, surface, ok, tc.wantID, tc.wantSurface, tc.wantOK)
			}
		})
	}
}
