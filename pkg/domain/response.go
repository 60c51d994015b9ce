package domain

// ErrorCode classifies a failed capability call.
type ErrorCode string

const (
	CodeInvalidParams    ErrorCode = "INVALID_PARAMS"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeNotAvailable     ErrorCode = "NOT_AVAILABLE"
	CodeSystemError      ErrorCode = "SYSTEM_ERROR"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeCancelled        ErrorCode = "CANCELLED"
)

// Response is the sealed set of capability call outcomes. A Response is
// created fresh per call by the invoked module and never shared across calls.
//
// Consumers dispatch with a type switch over the four variants:
// Success, Error, PermissionRequired, Confirmation.
type Response interface {
	isResponse()
}

// Success is a completed call with a human-readable message and result data.
type Success struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error is a failed call.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PermissionRequired reports the permissions missing for the call to proceed.
type PermissionRequired struct {
	Missing []string `json:"missing"`
}

// Confirmation withholds an action pending explicit user approval.
type Confirmation struct {
	Message string        `json:"message"`
	Pending PendingAction `json:"pending"`
}

func (Success) isResponse()            {}
func (Error) isResponse()              {}
func (PermissionRequired) isResponse() {}
func (Confirmation) isResponse()       {}

// Describe renders a Response as a short line of text, used by logs and the
// response node's fallback phrasing.
func Describe(r Response) string {
	switch v := r.(type) {
	case Success:
		return v.Message
	case Error:
		return string(v.Code) + ": " + v.Message
	case PermissionRequired:
		msg := "missing permissions:"
		for _, p := range v.Missing {
			msg += " " + p
		}
		return msg
	case Confirmation:
		return v.Message
	case nil:
		return ""
	}
	return ""
}
