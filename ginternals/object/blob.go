package object

import "github.com/nullpointr/corvid/ginternals"

// Blob wraps an Object holding an opaque byte sequence. Decoding a blob is
// the identity function: its payload IS its content.
type Blob struct {
	rawObject *Object
}

// NewBlob wraps a raw Object as a Blob. The caller is responsible for
// making sure o.Type() == TypeBlob.
func NewBlob(o *Object) *Blob {
	return &Blob{rawObject: o}
}

// ID returns the blob's OID.
func (b *Blob) ID() ginternals.Oid {
	return b.rawObject.ID()
}

// Bytes returns the blob's content.
func (b *Blob) Bytes() []byte {
	return b.rawObject.content
}

// Size returns the size of the blob's content, in bytes.
func (b *Blob) Size() int {
	return len(b.rawObject.content)
}

// ToObject returns the blob's underlying Object.
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
