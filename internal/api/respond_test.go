package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := Success(rec, http.StatusOK, "done", map[string]string{"id": "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type: %s", ct)
	}

	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if env["success"] != true {
		t.Error("expected success=true")
	}
	if env["message"] != "done" {
		t.Errorf("unexpected message: %v", env["message"])
	}
	if _, present := env["meta"]; present {
		t.Error("meta should be omitted when unset")
	}
	if _, present := env["error"]; present {
		t.Error("error should be omitted on success")
	}
}

func TestError_OmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := Error(rec, http.StatusConflict, "already settled"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if env["success"] != false {
		t.Error("expected success=false")
	}
	if _, present := env["data"]; present {
		t.Error("data should be omitted on error")
	}
}

func TestSuccessList_IncludesMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	meta := Meta{Page: 2, Limit: 10, Total: 35, TotalPage: 4}
	if err := SuccessList(rec, "listed", []string{"a"}, meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env struct {
		Meta Meta `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if env.Meta != meta {
		t.Errorf("unexpected meta: %+v", env.Meta)
	}
}

func TestNotFoundHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/no-such-route", nil)
	rec := httptest.NewRecorder()
	NotFoundHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   struct {
			Path    string `json:"path"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Message != "API NOT FOUND!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
	if env.Error.Path != "/api/no-such-route" {
		t.Errorf("unexpected error path: %s", env.Error.Path)
	}
	if env.Error.Message != "Your requested path is not found!" {
		t.Errorf("unexpected error message: %s", env.Error.Message)
	}
}
