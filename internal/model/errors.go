package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("email or username already exists")

	// Game errors
	ErrInvalidMove       = errors.New("invalid choice")
	ErrGameStateNotFound = errors.New("game state not found")
	ErrConcurrentUpdate  = errors.New("game state changed concurrently")
	ErrUnknownOpponent   = errors.New("unknown opponent strategy")
)
