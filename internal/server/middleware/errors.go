package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/budgetkeeper/pkg/api"
)

// writeError отвечает JSON ошибкой в том же формате, что и handlers
func writeError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: code, Message: message})
}
