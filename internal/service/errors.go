package service

import "errors"

var (
	ErrEmptyUtterance   = errors.New("EMPTY_UTTERANCE")
	ErrEngineBusy       = errors.New("ENGINE_BUSY")
	ErrSessionNotFound  = errors.New("SESSION_NOT_FOUND")
	ErrPropertyNotFound = errors.New("PROPERTY_NOT_FOUND")
)
