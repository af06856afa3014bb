package models

import "errors"

// Storage-level lookup failures shared by every backend.
var (
	ErrCardNotFound         = errors.New("card not found")
	ErrCardBaseNotFound     = errors.New("card base not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
