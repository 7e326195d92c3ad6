package domain

import "errors"

var (
	ErrInvalidID    = errors.New("invalid id")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidTitle = errors.New("invalid title")
)
