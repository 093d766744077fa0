// Package errors provides the store's error taxonomy: a base error type that
// every specialized error embeds, specialized types that attach domain
// context (storage, index, validation), and a small set of sentinel errors
// for conditions callers are expected to branch on with errors.Is.
package errors

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// IsStorageError reports whether err is, or wraps, a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsIndexError reports whether err is, or wraps, an *IndexError.
func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsStorageError extracts a *StorageError from err, if any.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	ok := errors.As(err, &se)
	return se, ok
}

// GetErrorCode extracts the ErrorCode from err if it carries one.
func GetErrorCode(err error) (ErrorCode, bool) {
	var be *baseError
	if errors.As(err, &be) {
		return be.Code(), true
	}
	return "", false
}

// ClassifyFileOpenError turns a failure from os.OpenFile into a StorageError
// with a code chosen by inspecting the underlying syscall errno, matching
// the failure modes operators actually need to distinguish: permission,
// read-only filesystem, or a disk that is genuinely out of space.
func ClassifyFileOpenError(err error, path string) *StorageError {
	code := ErrorCodeIO
	switch {
	case os.IsPermission(err):
		code = ErrorCodePermissionDenied
	case errors.Is(err, syscall.EROFS):
		code = ErrorCodeFilesystemReadonly
	case errors.Is(err, syscall.ENOSPC):
		code = ErrorCodeDiskFull
	}
	return NewStorageError(err, code, "failed to open segment file").WithPath(path)
}

// ClassifyDirectoryCreationError mirrors ClassifyFileOpenError for the data
// directory itself, created once on Open.
func ClassifyDirectoryCreationError(err error, path string) *StorageError {
	code := ErrorCodeIO
	switch {
	case os.IsPermission(err):
		code = ErrorCodePermissionDenied
	case errors.Is(err, syscall.EROFS):
		code = ErrorCodeFilesystemReadonly
	case errors.Is(err, fs.ErrExist):
		code = ErrorCodeInternal
	}
	return NewStorageError(err, code, "failed to create data directory").WithPath(path)
}

// ClassifySyncError wraps a failure from File.Sync/Write, attaching the
// offset at which it occurred so operators can correlate it with a segment.
func ClassifySyncError(err error, path string, offset int64) *StorageError {
	code := ErrorCodeIO
	if errors.Is(err, syscall.ENOSPC) {
		code = ErrorCodeDiskFull
	}
	return NewStorageError(err, code, "failed to flush segment writer").
		WithPath(path).
		WithOffset(offset)
}
