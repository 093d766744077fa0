package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing segment files.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories: bugs, assertion failures, invariant violations.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in a log-structured storage layer.
const (
	// ErrorCodeSegmentCorrupted indicates that a segment file's data has been
	// damaged or is in an inconsistent state: an unknown record tag or a
	// length field that runs past the file.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeTruncatedRecord indicates a record header or payload stops
	// short of its declared length, most often a torn trailing write after
	// a crash.
	ErrorCodeTruncatedRecord ErrorCode = "TRUNCATED_RECORD"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// a segment file or the data directory.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Index-specific error codes cover violations of the in-memory index's
// invariants, as distinct from on-disk corruption.
const (
	// ErrorCodeIndexCorrupted indicates an index entry points at a record
	// that does not decode to a Set, violating invariant 2 of the data model.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)
