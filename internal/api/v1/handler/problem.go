package handler

import (
	"encoding/json"
	"net/http"

	"messagesapp/internal/api/v1/dto"
)

// writeProblem renders an RFC 7807 style error body.
func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.Problem{Title: title, Detail: detail, Status: status})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
