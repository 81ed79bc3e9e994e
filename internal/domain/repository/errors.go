package repository

import "errors"

var ErrNotFound = errors.New("record not found")
var ErrIdempotencyKeyConflict = errors.New("idempotency key conflicts with request")
var ErrInvalidCursor = errors.New("invalid cursor")
var ErrInvalidInput = errors.New("invalid input")
var ErrForbidden = errors.New("forbidden")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTicketClosed = errors.New("ticket already closed")
var ErrTicketAlreadyClaimed = errors.New("ticket already claimed")
var ErrAlreadyExists = errors.New("record already exists")
var ErrUntrackable = errors.New("entity cannot be tracked")
