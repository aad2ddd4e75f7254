// internal/common/errors/handler.go
package errors

// Disposition tells the view how a failure should be surfaced.
type Disposition int

const (
	// DispositionNone means there was no failure.
	DispositionNone Disposition = iota
	// DispositionInline shows field errors next to the form; nothing was sent.
	DispositionInline
	// DispositionReauthenticate routes the user to log in again.
	DispositionReauthenticate
	// DispositionBanner shows a dismissible banner over the previous result.
	DispositionBanner
)

func (d Disposition) String() string {
	switch d {
	case DispositionInline:
		return "inline"
	case DispositionReauthenticate:
		return "reauthenticate"
	case DispositionBanner:
		return "banner"
	}
	return "none"
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler normalizes failures, logs them and picks a disposition.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle classifies err for display. It never retries anything.
func (h *ErrorHandler) Handle(operation string, err error) (*StandardError, Disposition) {
	if err == nil {
		return nil, DispositionNone
	}
	stdErr := Normalize(err)

	fields := map[string]interface{}{
		"operation":  operation,
		"errorCode":  string(stdErr.Code),
		"message":    stdErr.Message,
		"details":    stdErr.Details,
		"statusCode": stdErr.StatusCode,
	}

	switch stdErr.Code {
	case ErrCodeValidation:
		h.logger.Warn("input rejected", fields)
		return stdErr, DispositionInline
	case ErrCodeAuth:
		h.logger.Warn("credential rejected", fields)
		return stdErr, DispositionReauthenticate
	case ErrCodeRequest:
		h.logger.Warn("request failed", fields)
		return stdErr, DispositionBanner
	default:
		// Unknown failures are the ones worth diagnosing later.
		h.logger.Error("unexpected failure", fields)
		return stdErr, DispositionBanner
	}
}
