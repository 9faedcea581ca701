// Package ginternals contains the low-level types and helpers shared by
// every other package: the object identifier, the error taxonomy, and the
// on-disk path layout of a repository.
package ginternals

import (
	"crypto/sha1" //nolint:gosec // sha1 is the format, not a security decision
	"encoding/hex"

	"golang.org/x/xerrors"
)

// OidSize is the number of raw bytes in an Oid.
const OidSize = 20

// NullOid is the zero-value Oid, used as a sentinel for "no object".
var NullOid = Oid{}

// Oid is a 20-byte SHA-1 object identifier. Its zero value is NullOid.
type Oid [OidSize]byte

// NewOidFromContent returns the Oid of the given content, which is assumed
// to already contain the "<type> <size>\0" header.
func NewOidFromContent(data []byte) Oid {
	return Oid(sha1.Sum(data)) //nolint:gosec // sha1 is the format
}

// NewOidFromBytes builds an Oid from 20 raw bytes.
func NewOidFromBytes(b []byte) (Oid, error) {
	if len(b) != OidSize {
		return NullOid, xerrors.Errorf("oid must be %d bytes, got %d: %w", OidSize, len(b), ErrInvalidIdentifier)
	}
	var oid Oid
	copy(oid[:], b)
	return oid, nil
}

// NewOidFromHex builds an Oid from 40 lowercase hex characters provided as
// a byte slice (as found in a commit or tag header line).
func NewOidFromHex(b []byte) (Oid, error) {
	return NewOidFromChars(b)
}

// NewOidFromChars parses an Oid from its 40-character lowercase hex text
// form, provided as a byte slice.
func NewOidFromChars(b []byte) (Oid, error) {
	return NewOidFromStr(string(b))
}

// NewOidFromStr parses an Oid from its 40-character lowercase hex text
// form. Uppercase input is rejected: this core never emits uppercase and
// never accepts it either.
func NewOidFromStr(s string) (Oid, error) {
	if len(s) != OidSize*2 {
		return NullOid, xerrors.Errorf("oid %q must be %d characters: %w", s, OidSize*2, ErrInvalidIdentifier)
	}
	for _, r := range s {
		isLowerHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isLowerHex {
			return NullOid, xerrors.Errorf("oid %q contains a non-lowercase-hex character: %w", s, ErrInvalidIdentifier)
		}
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return NullOid, xerrors.Errorf("oid %q is not valid hex: %w", s, ErrInvalidIdentifier)
	}
	return NewOidFromBytes(raw)
}

// Bytes returns the raw 20-byte form of the Oid.
func (o Oid) Bytes() []byte {
	return o[:]
}

// String returns the canonical 40-character lowercase-hex form of the Oid.
func (o Oid) String() string {
	return hex.EncodeToString(o[:])
}

// IsZero reports whether the Oid is the NullOid.
func (o Oid) IsZero() bool {
	return o == NullOid
}

// Equal reports whether two Oids address the same content.
func (o Oid) Equal(other Oid) bool {
	return o == other
}
