package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// apiError is the body PostgREST returns for a failed request.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// wrapError wraps API errors with user-friendly messages.
// The original error stays reachable through errors.Is / errors.As.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request cancelled: %w", err)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	detail := gerr.Message
	var body apiError
	if json.Unmarshal([]byte(gerr.Body), &body) == nil && body.Message != "" {
		detail = body.Message
	}

	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("permission denied (check SUPABASE_ANON_KEY and row level security): %w", gerr)
	case http.StatusNotFound:
		return fmt.Errorf("table not found: %w", gerr)
	}

	if detail == "" {
		detail = http.StatusText(gerr.Code)
	}
	return fmt.Errorf("store rejected request (%d): %s: %w", gerr.Code, detail, gerr)
}
