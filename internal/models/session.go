package models

import "time"

// Session is one live login. Logging out deletes it.
type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SetupState is evaluated in order at start: storage first, then user count.
type SetupState string

const (
	SetupTableError SetupState = "TABLE_ERROR"
	SetupEmpty      SetupState = "EMPTY"
	SetupNormal     SetupState = "NORMAL"
)

// SetupStatus reports the bootstrap state to clients.
type SetupStatus struct {
	State   SetupState `json:"state"`
	Mode    string     `json:"mode"`
	Message string     `json:"message,omitempty"`
}
