package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evanschultz/pulse/internal/adapters/server/common"
)

// stubBoardService satisfies common.BoardService for composition tests.
type stubBoardService struct{}

func (stubBoardService) BoardSnapshot(context.Context, common.BoardRequest) ([]common.TaskView, error) {
	return nil, nil
}

func (stubBoardService) Timeline(context.Context, string) ([]common.TaskView, error) {
	return nil, nil
}

func (stubBoardService) ProjectSummary(context.Context, string) (common.ProjectSummary, error) {
	return common.ProjectSummary{}, nil
}

func (stubBoardService) ChangeTaskStatus(context.Context, common.StatusChangeRequest) (common.TaskView, error) {
	return common.TaskView{}, nil
}

// TestNewHandlerComposesEndpoints verifies health, API, and MCP routes mount.
func TestNewHandlerComposesEndpoints(t *testing.T) {
	handler, cfg, err := NewHandler(Config{}, Dependencies{Board: stubBoardService{}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected endpoints %q/%q", cfg.APIEndpoint, cfg.MCPEndpoint)
	}

	for _, target := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", target, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/board", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("api status = %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestNewHandlerRequiresBoardDependency verifies dependency enforcement.
func TestNewHandlerRequiresBoardDependency(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("NewHandler() error = nil, want non-nil")
	}
}

// TestNormalizeConfigRejectsEndpointCollision verifies collision detection.
func TestNormalizeConfigRejectsEndpointCollision(t *testing.T) {
	if _, err := normalizeConfig(Config{APIEndpoint: "/same", MCPEndpoint: "same/"}); err == nil {
		t.Fatal("normalizeConfig() error = nil, want non-nil")
	}
}

// TestNormalizeEndpoint verifies endpoint path defaulting.
func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in       string
		fallback string
		want     string
	}{
		{in: "", fallback: "/api/v1", want: "/api/v1"},
		{in: "rpc", fallback: "/mcp", want: "/rpc"},
		{in: "/rpc/", fallback: "/mcp", want: "/rpc"},
		{in: "/", fallback: "/mcp", want: "/mcp"},
	}
	for _, tc := range cases {
		if got := normalizeEndpoint(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("normalizeEndpoint(%q, %q) = %q, want %q", tc.in, tc.fallback, got, tc.want)
		}
	}
}
