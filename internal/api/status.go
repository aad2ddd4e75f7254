package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "agriwise-client/internal/common/errors"
)

// mapStatus converts a non-2xx answer into the failure taxonomy. It returns
// nil for 2xx.
func mapStatus(status int, body []byte) *apperrors.StandardError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return apperrors.NewAuthError(status, bodyMessage(body))
	case status >= 400 && status < 500:
		return apperrors.NewRequestError(status, bodyMessage(body))
	case status >= 500:
		return apperrors.NewServerError(status, bodyMessage(body))
	default:
		return apperrors.NewServerError(status, fmt.Sprintf("unexpected status %d", status))
	}
}

// bodyMessage pulls display text out of an error body. The service uses
// "error"; authentication failures use "detail"; some serializers use "errors"
// or return the field map at the top level.
func bodyMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "errors"} {
		if v, ok := payload[key]; ok {
			if msg := apperrors.FlattenMessage(v); msg != "" {
				return msg
			}
		}
	}
	delete(payload, "success")
	return apperrors.FlattenMessage(payload)
}
