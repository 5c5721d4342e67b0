package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentNotReady    = errors.New("document content has not been extracted yet")
	ErrDocumentEmpty       = errors.New("document has neither extracted text nor page images")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrAnalysisNotDone     = errors.New("analysis has not completed yet")
	ErrInvalidAnalysisKind = errors.New("invalid analysis kind; allowed: structure, bibliography")
	ErrGOSTNotFound        = errors.New("gost standard not found")
)
