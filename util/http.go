package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// HTTPClient returns the shared HTTP client for outbound requests
func HTTPClient() *http.Client {
	return httpClient
}

// HTTPError writes a JSON error response with the given status
func HTTPError(r *http.Request, w http.ResponseWriter, context LogContext, message string, status int) {
	LogAudit(context, LogAuditInput{
		Actor:    "areamanager",
		Action:   fmt.Sprintf("%v response", status),
		Actee:    r.URL.String(),
		Message:  message,
		Severity: WARN,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": message, "status": status})
}
