package object

import (
	"bytes"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/internal/readutil"
	"golang.org/x/xerrors"
)

// Tag is recognized but not manipulated by this core: its header fields
// (target, target type, name, tagger) and message are parsed for
// `cat-file -p`.
type Tag struct {
	rawObject *Object

	target ginternals.Oid
	typ    Type
	name   string
	tagger Signature

	message string
}

// NewTagFromObject decodes o as a Tag.
//
// Encoding (LF-terminated lines):
//
//	object <hex-oid>
//	type <target type>
//	tag <name>
//	tagger <name> <<email>> <unix-seconds> <tz>
//	<blank line>
//	<message>
func NewTagFromObject(o *Object) (*Tag, error) {
	if o.typ != TypeTag {
		return nil, xerrors.Errorf("type %s is not a tag: %w", o.typ, ginternals.ErrUnknownType)
	}
	t := &Tag{rawObject: o}

	objData := o.Bytes()
	offset := 0
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		if line == nil {
			return nil, xerrors.Errorf("tag has no terminating blank line: %w", ginternals.ErrCorruptObject)
		}
		offset += len(line) + 1

		if len(line) == 0 {
			t.message = string(objData[offset:])
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			return nil, xerrors.Errorf("malformed tag header line %q: %w", line, ginternals.ErrCorruptObject)
		}
		var err error
		switch string(kv[0]) {
		case "object":
			t.target, err = ginternals.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid target id %q: %w", kv[1], err)
			}
		case "type":
			t.typ, err = NewTypeFromString(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("invalid target type %q: %w", kv[1], err)
			}
		case "tag":
			t.name = string(kv[1])
		case "tagger":
			t.tagger, err = NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid tagger signature: %w", err)
			}
		}
	}

	return t, nil
}

// ID returns the tag's OID.
func (t *Tag) ID() ginternals.Oid { return t.rawObject.ID() }

// Target returns the OID of the object pointed at by the tag.
func (t *Tag) Target() ginternals.Oid { return t.target }

// Type returns the type of the target object.
func (t *Tag) Type() Type { return t.typ }

// Name returns the tag's name.
func (t *Tag) Name() string { return t.name }

// Tagger returns the signature of the tag's creator.
func (t *Tag) Tagger() Signature { return t.tagger }

// Message returns the tag message.
func (t *Tag) Message() string { return t.message }

// ToObject returns the tag's underlying Object.
func (t *Tag) ToObject() *Object { return t.rawObject }
