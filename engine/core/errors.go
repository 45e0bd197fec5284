package core

import (
	"errors"
)

var (
	ErrCameraNotFound   = errors.New("camera not found")
	ErrCameraExists     = errors.New("camera already registered")
	ErrCameraSystemFull = errors.New("camera system is full")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknown          = errors.New("unknown")
)
