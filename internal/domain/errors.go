package domain

import "errors"

var (
	// ErrAgentCommunication is the only error an AgentClient surfaces for
	// transport, status, decoding and timeout failures.
	ErrAgentCommunication = errors.New("failed to communicate with the AI agent")

	ErrEmptyInput      = errors.New("input is empty")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)
