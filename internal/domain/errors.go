package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrBuildInProgress   = errors.New("build in progress")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidLogo       = errors.New("invalid logo")
	ErrEmptyLogo         = errors.New("empty logo")
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
