// Package api holds the uniform response envelope and list pagination
// helpers shared by every HTTP handler.
package api

import (
	"encoding/json"
	"net/http"
)

type Meta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func Write(w http.ResponseWriter, status int, env Envelope) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(env)
}

func Success(w http.ResponseWriter, status int, message string, data any) error {
	return Write(w, status, Envelope{Success: true, Message: message, Data: data})
}

func SuccessList(w http.ResponseWriter, message string, data any, meta Meta) error {
	return Write(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

func Error(w http.ResponseWriter, status int, message string) error {
	return Write(w, status, Envelope{Success: false, Message: message})
}

// NotFoundHandler answers any unrouted path with the uniform envelope.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = Write(w, http.StatusNotFound, Envelope{
			Success: false,
			Message: "API NOT FOUND!",
			Error: map[string]string{
				"path":    r.URL.Path,
				"message": "Your requested path is not found!",
			},
		})
	})
}
