// Package feedback implements the feedback service: validation, storage,
// privacy-preserving identifiers, and pure-function insights aggregation
// over recorded human feedback on detected issues.
package feedback

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Kind is the caller's judgment of one detected error.
type Kind string

// Kind values (spec §4.7, "feedback_kind").
const (
	KindCorrect          Kind = "correct"
	KindIncorrect        Kind = "incorrect"
	KindPartiallyCorrect Kind = "partially_correct"
)

var validKinds = map[Kind]bool{
	KindCorrect:          true,
	KindIncorrect:        true,
	KindPartiallyCorrect: true,
}

const maxReasonBytes = 1000

// Feedback is one human judgment of a detected error (spec §3,
// "Feedback").
type Feedback struct {
	ID               string
	SessionID        string
	ErrorID          string
	ErrorType        string
	ErrorMessage     string
	RuleCategory     string
	Kind             Kind
	ConfidenceRating *float64
	UserReason       string
	ClientIPHash     string
	UserAgent        string
	Timestamp        time.Time
}

// ValidationError is the typed error Validate returns, carrying a machine
// code for API responses.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// Validate implements every rule in spec §4.7 exactly.
func Validate(f Feedback) error {
	if f.SessionID == "" {
		return invalid("missing_session_id", "session_id is required")
	}
	if f.ErrorID == "" {
		return invalid("missing_error_id", "error identifier is required")
	}
	if f.ErrorType == "" {
		return invalid("missing_error_type", "error_type is required")
	}
	if f.ErrorMessage == "" {
		return invalid("missing_error_message", "error_message is required")
	}
	if f.Kind == "" {
		return invalid("missing_feedback_kind", "feedback_kind is required")
	}
	if !validKinds[f.Kind] {
		return invalid("invalid_feedback_kind", fmt.Sprintf("feedback_kind %q is not one of correct, incorrect, partially_correct", f.Kind))
	}
	if f.ConfidenceRating != nil && (*f.ConfidenceRating < 0.0 || *f.ConfidenceRating > 1.0) {
		return invalid("confidence_rating_out_of_range", "confidence_rating must be within [0.0, 1.0]")
	}
	if len(f.UserReason) > maxReasonBytes {
		return invalid("user_reason_too_long", "user_reason must be at most 1000 bytes")
	}
	return nil
}

// MakeID returns the lowercase 12-hex-char prefix of SHA-256 over
// (session_id | violation_id | timestamp) (spec §4.7, "Privacy").
func MakeID(sessionID, errorID string, timestamp time.Time) string {
	sum := sha256.Sum256([]byte(sessionID + "|" + errorID + "|" + strconv.FormatInt(timestamp.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])[:12]
}

// HashClientIP returns a keyed one-way hash of a client IP, stable within
// a process for a given salt (spec §4.7, "Privacy").
func HashClientIP(salt []byte, ip string) string {
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// Stats summarizes one session's feedback history.
type Stats struct {
	Total        int
	Distribution map[Kind]int
}

// Insights is the aggregate computed by Store.Insights (spec §4.7,
// "Insights").
type Insights struct {
	AccuracyRate         float64
	AccuracyByConfidence map[string]float64
	AccuracyByCategory   map[string]float64
	UniqueSessions       int
}

// Store is the persistence interface the feedback service depends on
// (spec §4.7, "Storage").
type Store interface {
	Store(ctx context.Context, f Feedback) (string, error)
	StatsForSession(ctx context.Context, sessionID string) (Stats, error)
	SessionFeedback(ctx context.Context, sessionID string) ([]Feedback, error)
	Insights(ctx context.Context, daysBack int) (Insights, error)
	Delete(ctx context.Context, sessionID, feedbackID string) (bool, error)
}
