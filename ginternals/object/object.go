// Package object contains the in-memory representations of the four git
// object types (blob, tree, commit, tag) and their parse/serialize codec.
package object

import (
	"bytes"
	"compress/zlib"
	"strconv"
	"sync"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/internal/errutil"
	"github.com/nullpointr/corvid/internal/readutil"
	"golang.org/x/xerrors"
)

// Type represents the type of an object, as stored on disk and in a
// packfile entry header.
type Type int8

// List of all the possible object types. 5, 6, and 7 are reserved /
// delta-only in a packfile and never appear as a persisted object type.
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	default:
		return "unknown"
	}
}

// IsValid reports whether t is one of the four persisted object types.
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns the Type matching the given on-disk type word.
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, xerrors.Errorf("%q: %w", t, ginternals.ErrUnknownType)
	}
}

// Object is a git object: a type tag plus its decoded payload. The OID is
// a function of both (the header `<type> <size>\0` is hashed along with
// the payload), so it's computed lazily and cached.
type Object struct {
	id      ginternals.Oid
	typ     Type
	content []byte

	idOnce sync.Once
}

// New creates a new Object of the given type wrapping content.
func New(typ Type, content []byte) *Object {
	o := &Object{
		typ:     typ,
		content: content,
	}
	return o
}

// ID returns the OID of the object: sha1("<type> <size>\0" + content).
func (o *Object) ID() ginternals.Oid {
	o.idOnce.Do(func() {
		o.id, _ = o.build()
	})
	return o.id
}

// Size returns the size of the object's payload, in bytes.
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the object's type.
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's decoded payload.
func (o *Object) Bytes() []byte {
	return o.content
}

func (o *Object) build() (oid ginternals.Oid, data []byte) {
	// bytes.Buffer's Write* methods never fail, so the errors below are
	// always nil.
	w := new(bytes.Buffer)
	w.WriteString(o.Type().String())
	w.WriteByte(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.Bytes())

	data = w.Bytes()
	oid = ginternals.NewOidFromContent(data)
	return oid, data
}

// Framed returns the uncompressed on-disk form: "<type> <size>\0<payload>".
func (o *Object) Framed() []byte {
	_, data := o.build()
	return data
}

// Compress returns the object zlib-compressed, in the exact form persisted
// by the object store: deflate("<type> <size>\0<payload>").
func (o *Object) Compress() (data []byte, err error) {
	framed := o.Framed()

	compressed := new(bytes.Buffer)
	zw := zlib.NewWriter(compressed)

	// The writer is closed before the buffer is read: Close flushes the
	// final deflate block and appends the adler-32 checksum.
	_, err = zw.Write(framed)
	errutil.Close(zw, &err)
	if err != nil {
		return nil, xerrors.Errorf("could not deflate object: %w", err)
	}
	return compressed.Bytes(), nil
}

// AsBlob interprets the object as a Blob.
func (o *Object) AsBlob() *Blob {
	return NewBlob(o)
}

// AsTree interprets the object as a Tree.
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit interprets the object as a Commit.
func (o *Object) AsCommit() (*Commit, error) {
	return NewCommitFromObject(o)
}

// AsTag interprets the object as a Tag.
func (o *Object) AsTag() (*Tag, error) {
	return NewTagFromObject(o)
}

// parseHeader is a convenience used by the object store: splits a framed
// payload "<type> <size>\0<bytes>" into its type, declared size, and the
// remaining payload bytes.
func parseHeader(framed []byte) (typ Type, size int, payload []byte, err error) {
	typWord := readutil.ReadTo(framed, ' ')
	if typWord == nil {
		return 0, 0, nil, xerrors.Errorf("could not find object type: %w", ginternals.ErrCorruptObject)
	}
	offset := len(typWord) + 1

	sizeWord := readutil.ReadTo(framed[offset:], 0)
	if sizeWord == nil {
		return 0, 0, nil, xerrors.Errorf("could not find object size: %w", ginternals.ErrCorruptObject)
	}
	offset += len(sizeWord) + 1

	typ, err = NewTypeFromString(string(typWord))
	if err != nil {
		return 0, 0, nil, err
	}
	size, err = strconv.Atoi(string(sizeWord))
	if err != nil {
		return 0, 0, nil, xerrors.Errorf("invalid size %q: %w", sizeWord, ginternals.ErrCorruptObject)
	}
	payload = framed[offset:]
	if len(payload) != size {
		return 0, 0, nil, xerrors.Errorf("object declares size %d but has %d bytes: %w", size, len(payload), ginternals.ErrCorruptObject)
	}
	return typ, size, payload, nil
}

// NewFromFramed decodes a raw "<type> <size>\0<payload>" byte sequence
// (the inflated form of a loose object, or the implicit payload of a raw
// packfile entry once its synthetic header is reattached).
func NewFromFramed(framed []byte) (*Object, error) {
	typ, _, payload, err := parseHeader(framed)
	if err != nil {
		return nil, err
	}
	return New(typ, payload), nil
}
