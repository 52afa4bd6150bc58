package common

import "github.com/pkg/errors"

var (
	ErrNoSuitableDevice  = errors.New("no suitable physical device (GPU) found")
	ErrNoSupportedFormat = errors.New("no supported format found")
	ErrUnsupported       = errors.New("required extension or layer not supported")
)
