// Package boolidx implements a persistable boolean inverted-index engine
// over arbitrary orderable term types: chunked compressed posting
// storage, a parallel indexing pipeline, and lazy iterators evaluating
// AND/OR/phrase/NOT queries (spec.md §1-§2).
package boolidx

import (
	"fmt"

	"github.com/rpcpool/boolidx/build"
)

// KeyNotFoundError reports that a requested TermId or chunk id has no
// entry (spec.md §7 "Storage: KeyNotFound").
type KeyNotFoundError struct {
	Detail string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("boolidx: key not found: %s", e.Detail)
}

// CorruptDataError reports a cross-file consistency failure detected
// while loading a persisted index (spec.md §4.7/§7).
type CorruptDataError struct {
	Reason string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("boolidx: corrupt data: %s", e.Reason)
}

// MissingFilesError reports that one or more of the expected on-disk
// layout files (spec.md §6) are absent from a load directory.
type MissingFilesError struct {
	Paths []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("boolidx: missing files: %v", e.Paths)
}

// BuilderErrorKind distinguishes the ways a façade-level build/persist
// request can be misconfigured (spec.md §6).
type BuilderErrorKind int

const (
	PersistPathNotSpecified BuilderErrorKind = iota
	PersistPathIsFile
)

func (k BuilderErrorKind) String() string {
	switch k {
	case PersistPathNotSpecified:
		return "PersistPathNotSpecified"
	case PersistPathIsFile:
		return "PersistPathIsFile"
	default:
		return "Unknown"
	}
}

// BuilderError reports a misconfigured Create/Persist call.
type BuilderError struct {
	Kind BuilderErrorKind
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("boolidx: builder error: %s", e.Kind)
}

// IndexingError re-exports build.Error under the façade's error
// taxonomy name (spec.md §6 "Indexing(ThreadPanic | Io |
// ChannelSendError)").
type IndexingError = build.Error
