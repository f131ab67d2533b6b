package domain

import "time"

type SessionID string
type MessageID string

type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
)

type Timestamp = time.Time
