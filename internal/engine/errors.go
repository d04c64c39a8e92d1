package engine

import "errors"

// Erros de precondição do motor. Toda violação aborta a operação inteira,
// sem mutação parcial de estado.
var (
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrNotAuthorized       = errors.New("caller is not the resolver")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNotFound            = errors.New("bet not found")
	ErrAlreadyAccepted     = errors.New("bet is not open")
	ErrNotAccepted         = errors.New("bet is not accepted")
	ErrSelfBet             = errors.New("cannot accept own bet")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrExpired             = errors.New("bet expired")
	ErrNotExpired          = errors.New("bet not expired yet")
)
