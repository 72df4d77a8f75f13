package attempt

import (
	"encoding/json"
	"time"
)

// State is the whole presentation state of the console. It is replaced, never
// patched; values handed out by the Store must be treated as read-only.
type State struct {
	AttemptID      string            `json:"attemptId,omitempty"`
	Endpoint       string            `json:"endpoint,omitempty"`
	Loading        bool              `json:"loading"`
	Result         *ResponseSnapshot `json:"result"`
	ErrorMessage   string            `json:"errorMessage,omitempty"`
	SuccessMessage string            `json:"successMessage,omitempty"`
	StartedAt      time.Time         `json:"startedAt,omitzero"`
	FinishedAt     time.Time         `json:"finishedAt,omitzero"`
}

// ResponseSnapshot holds exactly one of Exchange or Failure.
type ResponseSnapshot struct {
	Exchange *Exchange `json:"exchange,omitempty"`
	Failure  *Failure  `json:"failure,omitempty"`
}

type Exchange struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Data       json.RawMessage   `json:"data"`
}

type Failure struct {
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

type Credentials struct {
	Email    string
	Password string
}

// loginReply covers both the success and failure body shapes. Token and
// Message stay raw: backends are not consistent about their types.
type loginReply struct {
	Token   json.RawMessage `json:"token"`
	User    *loginUser      `json:"user"`
	Message json.RawMessage `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

type loginUser struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Nombre string `json:"nombre"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
