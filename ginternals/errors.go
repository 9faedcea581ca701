package ginternals

import "errors"

// Error kinds. These are the closed taxonomy the core reports through;
// every returned error satisfies errors.Is against exactly one of these,
// usually wrapped with xerrors.Errorf for context (offending OID, path).
var (
	// ErrInvalidArgument is returned when a caller-supplied argument is
	// structurally wrong (e.g. an empty path).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidIdentifier is returned when an Oid's length or alphabet
	// is wrong.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrObjectNotFound is returned when an object isn't found in the
	// object store.
	ErrObjectNotFound = errors.New("object not found")
	// ErrCorruptObject is returned when a loose object's header is
	// malformed or its declared size doesn't match its payload.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrUnknownType is returned when an object's type word isn't one of
	// commit/tree/blob/tag.
	ErrUnknownType = errors.New("unknown object type")
	// ErrNotACommit is returned when an operation expecting a commit is
	// given an object of another type.
	ErrNotACommit = errors.New("object is not a commit")
	// ErrNotATree is returned when an operation expecting a tree is given
	// an object of another type.
	ErrNotATree = errors.New("object is not a tree")
	// ErrNotABlob is returned when an operation expecting a blob is given
	// an object of another type.
	ErrNotABlob = errors.New("object is not a blob")
	// ErrUnsupportedMode is returned by checkout when a tree entry's mode
	// is not 040000, 100644, or 100755.
	ErrUnsupportedMode = errors.New("unsupported tree entry mode")
	// ErrUnsupportedEntry is returned by write-tree when a working-tree
	// entry is neither a regular file nor a directory.
	ErrUnsupportedEntry = errors.New("unsupported working tree entry")
	// ErrPackMalformed is returned when a pack's header, per-entry
	// prefix, or entry count doesn't match the format.
	ErrPackMalformed = errors.New("malformed packfile")
	// ErrPackChecksumMismatch is returned when a pack's trailing SHA-1
	// doesn't match the SHA-1 of the preceding bytes.
	ErrPackChecksumMismatch = errors.New("packfile checksum mismatch")
	// ErrCorruptDelta is returned when a delta instruction stream
	// violates its own source/target length invariants.
	ErrCorruptDelta = errors.New("corrupt delta")
	// ErrNetworkError wraps any non-2xx HTTP response or transport
	// failure encountered while talking to a remote.
	ErrNetworkError = errors.New("network error")
	// ErrIoError wraps unexpected filesystem failures.
	ErrIoError = errors.New("io error")

	// ErrRefAdvertisementMalformed is returned when the info/refs
	// response can't be parsed as pkt-lines of "<oid> <name>".
	ErrRefAdvertisementMalformed = errors.New("malformed ref advertisement")
	// ErrNoMasterAdvertised is returned when a remote's ref
	// advertisement has no refs/heads/master entry.
	ErrNoMasterAdvertised = errors.New("remote has no refs/heads/master")
	// ErrExpectedNAK is returned when the git-upload-pack response body
	// doesn't begin with the expected NAK pkt-line.
	ErrExpectedNAK = errors.New("expected NAK")
)
