package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorRunLocked      = errors.New("another sync run is in progress")
)
