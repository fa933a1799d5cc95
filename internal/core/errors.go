package core

import (
	"errors"
	"fmt"
)

// ErrDataNotFound indicates the target repository's crawled data is missing
// entirely. It is fatal for that repository's run.
var ErrDataNotFound = errors.New("repository data not found")

// ErrCacheUnavailable indicates the cache backing store cannot be used. The
// cache recovers by falling back to always-recompute; it is never fatal.
var ErrCacheUnavailable = errors.New("score cache unavailable")

// DataNotFoundError wraps ErrDataNotFound with the repository it concerns.
type DataNotFoundError struct {
	Repo RepoID
	Path string
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("repository data not found for %s at %s", e.Repo.FullName(), e.Path)
}

func (e *DataNotFoundError) Unwrap() error { return ErrDataNotFound }

// DataQualityWarning records a partially missing or malformed PR subdirectory.
// The affected collections are treated as empty and the run continues.
type DataQualityWarning struct {
	PRNumber int
	Section  string
	Reason   string
}

func (w DataQualityWarning) String() string {
	if w.PRNumber > 0 {
		return fmt.Sprintf("pr %d: %s: %s", w.PRNumber, w.Section, w.Reason)
	}
	return fmt.Sprintf("%s: %s", w.Section, w.Reason)
}
