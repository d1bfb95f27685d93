package service

import "errors"

var (
	// ErrPageNotFound is returned when a page does not exist.
	ErrPageNotFound = errors.New("page not found")
	// ErrVersionNotFound is returned when a published version index does not exist.
	ErrVersionNotFound = errors.New("page version not found")
	// ErrNotPublished is returned when a page has no published version yet.
	ErrNotPublished = errors.New("page is not published")
	// ErrSectionsCorrupted is returned when a stored section payload cannot be decoded.
	ErrSectionsCorrupted = errors.New("page sections are corrupted")
	// ErrTemplateFormat is returned when an imported template blob is not readable.
	ErrTemplateFormat = errors.New("invalid template format")
	// ErrTemplateVersion is returned when an imported template's format version is incompatible.
	ErrTemplateVersion = errors.New("incompatible template format version")
	// ErrPageExists is returned when an import would overwrite an existing page.
	ErrPageExists = errors.New("page already exists")
)
