package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes by the
// surrounding application. The core never speaks HTTP itself.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// TitleCollisionError is an attempt to have two documents with the
	// same title in one locale.
	TitleCollisionError struct {
		Locale string
		Title  string
	}

	// SlugCollisionError is an attempt to have two documents with the
	// same slug in one locale.
	SlugCollisionError struct {
		Locale string
		Slug   string
	}

	// InvalidParentError indicates a translation whose parent document is
	// not localizable.
	InvalidParentError struct {
		DocumentTitle string
		ParentTitle   string
	}

	// HasTranslationsError indicates an attempt to make a document
	// non-localizable while translations of it exist.
	HasTranslationsError struct {
		DocumentTitle string
		Translations  int
	}

	// MissingCategoryError indicates a root document without a valid
	// category.
	MissingCategoryError struct {
		DocumentTitle string
	}

	// InvalidBasedOnError indicates a revision whose based_on does not
	// reference a revision of the document's canonical original. It
	// carries the corrected value for the caller to re-offer.
	InvalidBasedOnError struct {
		BasedOnID int64
		// SuggestedID is the id of the most likely correct based_on
		// revision, or nil if none could be resolved.
		SuggestedID *int64
	}

	// InconsistentSaveError indicates an internal invariant was violated
	// at save time. It is fatal and must abort the transaction.
	InconsistentSaveError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string { return e.Message }

func (e *TitleCollisionError) Error() string {
	return fmt.Sprintf("title %q already exists in locale %q", e.Title, e.Locale)
}

func (e *SlugCollisionError) Error() string {
	return fmt.Sprintf("slug %q already exists in locale %q", e.Slug, e.Locale)
}

func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("%q: parent %q is not localizable", e.DocumentTitle, e.ParentTitle)
}

func (e *HasTranslationsError) Error() string {
	return fmt.Sprintf("%q: document has %d translations but is not localizable",
		e.DocumentTitle, e.Translations)
}

func (e *MissingCategoryError) Error() string {
	return fmt.Sprintf("%q: please choose a category", e.DocumentTitle)
}

func (e *InvalidBasedOnError) Error() string {
	return fmt.Sprintf("based_on revision %d is not a revision of the original document",
		e.BasedOnID)
}

func (e *InconsistentSaveError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int        { return http.StatusNotFound }
func (e *TitleCollisionError) StatusCode() int  { return http.StatusConflict }
func (e *SlugCollisionError) StatusCode() int   { return http.StatusConflict }
func (e *InvalidParentError) StatusCode() int   { return http.StatusBadRequest }
func (e *HasTranslationsError) StatusCode() int { return http.StatusBadRequest }
func (e *MissingCategoryError) StatusCode() int { return http.StatusBadRequest }
func (e *InvalidBasedOnError) StatusCode() int  { return http.StatusBadRequest }

// Is allows errors.Is() matching against the sentinels.
func (e *NotFoundError) Is(target error) bool       { return target == ErrNotFound }
func (e *TitleCollisionError) Is(target error) bool { return target == ErrConflict }
func (e *SlugCollisionError) Is(target error) bool  { return target == ErrConflict }
func (e *InvalidParentError) Is(target error) bool  { return target == ErrValidation }
func (e *HasTranslationsError) Is(target error) bool {
	return target == ErrValidation
}
func (e *MissingCategoryError) Is(target error) bool { return target == ErrValidation }
func (e *InvalidBasedOnError) Is(target error) bool  { return target == ErrValidation }
