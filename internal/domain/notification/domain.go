package notification

import "time"

type Kind string

const (
	KindAlert    Kind = "alert"
	KindRecovery Kind = "recovery"
)

type Notification struct {
	ID      int64     `json:"id"`
	Target  string    `json:"target"`
	Kind    Kind      `json:"kind"`
	SentAt  time.Time `json:"sent_at"`
	Payload string    `json:"payload"` // message body
}

// Event is the machine-readable twin of a dispatched alert or recovery message.
type Event struct {
	ID                  string    `json:"id"`
	Target              string    `json:"target"`
	Address             string    `json:"address"`
	Kind                Kind      `json:"kind"`
	Reason              string    `json:"reason,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	At                  time.Time `json:"at"`
}
