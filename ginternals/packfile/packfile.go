// Package packfile parses a git packfile (the wire format a smart-HTTP
// server streams back from git-upload-pack) into its objects.
//
// Packs are only ever handled transiently, in memory, while a clone is
// in progress: by the time Parse returns, every object is fully
// resolved and ready to be persisted with objstore, so there's no
// on-disk .idx companion and no random-access lookup here.
package packfile

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"encoding/binary"
	"io/ioutil"

	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
)

const (
	// headerSize is the 12-byte "PACK" + version(4) + object count(4).
	headerSize = 12
	// trailerSize is the trailing SHA-1 checksum of everything before it.
	trailerSize = ginternals.OidSize
)

var packMagic = [4]byte{'P', 'A', 'C', 'K'}

// entryType mirrors the 3-bit type tag in a pack entry header. It's
// distinct from object.Type because packs carry two entry kinds
// (ref-delta, ofs-delta) that never exist as persisted objects.
type entryType uint8

const (
	entryCommit   entryType = 1
	entryTree     entryType = 2
	entryBlob     entryType = 3
	entryTag      entryType = 4
	entryOfsDelta entryType = 6
	entryRefDelta entryType = 7
)

func (t entryType) objectType() (object.Type, bool) {
	switch t {
	case entryCommit:
		return object.TypeCommit, true
	case entryTree:
		return object.TypeTree, true
	case entryBlob:
		return object.TypeBlob, true
	case entryTag:
		return object.TypeTag, true
	default:
		return 0, false
	}
}

// refDelta is a REF_DELTA entry whose base couldn't yet be resolved to
// an object.
type refDelta struct {
	base  ginternals.Oid
	delta []byte
}

// BaseLookup resolves a base object that isn't part of the pack being
// parsed, e.g. one already persisted in the local object store. It's
// only consulted for REF_DELTA entries whose base never shows up
// inside the pack itself.
type BaseLookup func(oid ginternals.Oid) (*object.Object, bool)

// Parse decodes every object in a packfile, resolving REF_DELTA
// entries against either another object in the same pack or, if
// lookupBase is non-nil, the local object store. It returns the
// non-delta objects in the order they appeared in the pack, followed
// by the objects rebuilt from REF_DELTA entries; the order among the
// rebuilt objects is not defined.
//
// OFS_DELTA entries aren't produced by the upload-pack negotiation
// this client performs (no "ofs-delta" capability is requested), so
// encountering one is treated as a malformed pack.
func Parse(data []byte, lookupBase BaseLookup) ([]*object.Object, error) {
	if err := verify(data); err != nil {
		return nil, err
	}

	count := binary.BigEndian.Uint32(data[8:headerSize])
	body := data[headerSize : len(data)-trailerSize]

	resolved := make(map[ginternals.Oid]*object.Object, count)
	order := make([]ginternals.Oid, 0, count)
	var pending []refDelta

	offset := 0
	for i := uint32(0); i < count; i++ {
		typ, size, n, err := readEntryHeader(body[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		switch typ {
		case entryOfsDelta:
			return nil, xerrors.Errorf("OFS_DELTA entries are not supported: %w", ginternals.ErrPackMalformed)
		case entryRefDelta:
			if len(body[offset:]) < ginternals.OidSize {
				return nil, xerrors.Errorf("truncated ref-delta base: %w", ginternals.ErrPackMalformed)
			}
			base, err := ginternals.NewOidFromBytes(body[offset : offset+ginternals.OidSize])
			if err != nil {
				return nil, xerrors.Errorf("invalid ref-delta base: %w", err)
			}
			offset += ginternals.OidSize

			payload, n, err := inflate(body[offset:], int(size))
			if err != nil {
				return nil, err
			}
			offset += n
			pending = append(pending, refDelta{base: base, delta: payload})
		default:
			oType, ok := typ.objectType()
			if !ok {
				return nil, xerrors.Errorf("unknown pack entry type %d: %w", typ, ginternals.ErrPackMalformed)
			}
			payload, n, err := inflate(body[offset:], int(size))
			if err != nil {
				return nil, err
			}
			offset += n

			o := object.New(oType, payload)
			resolved[o.ID()] = o
			order = append(order, o.ID())
		}
	}

	deltaObjects, err := resolveDeltas(pending, resolved, lookupBase)
	if err != nil {
		return nil, err
	}
	for oid, o := range deltaObjects {
		resolved[oid] = o
		order = append(order, oid)
	}

	objs := make([]*object.Object, 0, len(order))
	for _, oid := range order {
		objs = append(objs, resolved[oid])
	}
	if uint32(len(objs)) != count {
		return nil, xerrors.Errorf("pack declares %d objects but %d were resolved: %w", count, len(objs), ginternals.ErrPackMalformed)
	}
	return objs, nil
}

// resolveDeltas applies every pending REF_DELTA in a deferred,
// multi-pass loop: a delta whose base hasn't appeared yet is simply
// retried on the next pass, once more bases have been resolved. This
// avoids requiring the pack to list base objects before the deltas
// that depend on them, which the format doesn't guarantee.
func resolveDeltas(pending []refDelta, resolved map[ginternals.Oid]*object.Object, lookupBase BaseLookup) (map[ginternals.Oid]*object.Object, error) {
	out := make(map[ginternals.Oid]*object.Object, len(pending))

	for len(pending) > 0 {
		progressed := false
		next := pending[:0]

		for _, d := range pending {
			base, found := resolved[d.base]
			if !found {
				base, found = out[d.base]
			}
			if !found && lookupBase != nil {
				base, found = lookupBase(d.base)
			}
			if !found {
				next = append(next, d)
				continue
			}

			o, err := applyDelta(base, d.delta)
			if err != nil {
				return nil, err
			}
			out[o.ID()] = o
			progressed = true
		}

		if !progressed {
			return nil, xerrors.Errorf("base object(s) never resolved: %w", ginternals.ErrCorruptDelta)
		}
		pending = next
	}

	return out, nil
}

func verify(data []byte) error {
	if len(data) < headerSize+trailerSize {
		return xerrors.Errorf("pack too small: %w", ginternals.ErrPackMalformed)
	}
	if !bytes.Equal(data[:4], packMagic[:]) {
		return xerrors.Errorf("bad magic: %w", ginternals.ErrPackMalformed)
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != 2 && version != 3 {
		return xerrors.Errorf("unsupported pack version %d: %w", version, ginternals.ErrPackMalformed)
	}

	body := data[:len(data)-trailerSize]
	want := data[len(data)-trailerSize:]
	got := sha1.Sum(body)
	if !bytes.Equal(got[:], want) {
		return ginternals.ErrPackChecksumMismatch
	}
	return nil
}

// readEntryHeader reads a pack entry's variable-length type+size
// prefix. The first byte holds the MSB continuation bit, a 3-bit type,
// and the low 4 bits of the size; every continuation byte holds the
// MSB bit and 7 more size bits, least-significant chunk first.
func readEntryHeader(b []byte) (typ entryType, size uint64, used int, err error) {
	if len(b) == 0 {
		return 0, 0, 0, xerrors.Errorf("truncated entry header: %w", ginternals.ErrPackMalformed)
	}
	first := b[0]
	used = 1
	typ = entryType((first >> 4) & 0x7)
	size = uint64(first & 0x0f)

	shift := uint(4)
	for first&0x80 != 0 {
		if used >= len(b) || shift >= 64 {
			return 0, 0, 0, xerrors.Errorf("oversized entry header: %w", ginternals.ErrPackMalformed)
		}
		first = b[used]
		size |= uint64(first&0x7f) << shift
		used++
		shift += 7
	}
	return typ, size, used, nil
}

// readSize reads a delta-stream size varint: 7 bits per byte,
// least-significant chunk first, MSB as the continuation bit. Used for
// both the source/target sizes in a delta header and isn't tied to an
// entry type.
func readSize(b []byte) (size uint64, used int, err error) {
	shift := uint(0)
	for {
		if used >= len(b) {
			return 0, 0, xerrors.Errorf("truncated size: %w", ginternals.ErrCorruptDelta)
		}
		c := b[used]
		used++
		size |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, xerrors.Errorf("size overflow: %w", ginternals.ErrCorruptDelta)
		}
	}
	return size, used, nil
}

// inflate zlib-decompresses a single entry's payload starting at the
// beginning of b, returning the decoded bytes and the number of
// compressed bytes consumed so the caller can advance past it.
func inflate(b []byte, wantSize int) (payload []byte, used int, err error) {
	br := bytes.NewReader(b)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, 0, xerrors.Errorf("could not start inflating entry: %w", ginternals.ErrPackMalformed)
	}
	defer zr.Close() //nolint:errcheck // read-only, nothing to flush

	payload, err = ioutil.ReadAll(zr)
	if err != nil {
		return nil, 0, xerrors.Errorf("could not inflate entry: %w", ginternals.ErrPackMalformed)
	}
	if len(payload) != wantSize {
		return nil, 0, xerrors.Errorf("entry declares size %d but inflated to %d: %w", wantSize, len(payload), ginternals.ErrPackMalformed)
	}

	used = len(b) - br.Len()
	return payload, used, nil
}

// applyDelta reconstructs an object from a REF_DELTA payload and its
// fully-resolved base.
func applyDelta(base *object.Object, delta []byte) (*object.Object, error) {
	sourceSize, n, err := readSize(delta)
	if err != nil {
		return nil, err
	}
	if int(sourceSize) != base.Size() {
		return nil, xerrors.Errorf("delta base size mismatch: expected %d, got %d: %w", sourceSize, base.Size(), ginternals.ErrCorruptDelta)
	}
	delta = delta[n:]

	targetSize, n, err := readSize(delta)
	if err != nil {
		return nil, err
	}
	delta = delta[n:]

	baseContent := base.Bytes()
	out := bytes.NewBuffer(make([]byte, 0, targetSize))

	for i := 0; i < len(delta); {
		op := delta[i]
		i++

		if op&0x80 != 0 {
			// COPY: the low 4 bits select which of the next 4 bytes hold
			// the offset into the base, the next 3 bits select which of
			// the following 3 bytes hold the copy size.
			var offset, size uint32
			for bit := uint(0); bit < 4; bit++ {
				if op&(1<<bit) != 0 {
					offset |= uint32(delta[i]) << (8 * bit)
					i++
				}
			}
			for bit := uint(0); bit < 3; bit++ {
				if op&(1<<(4+bit)) != 0 {
					size |= uint32(delta[i]) << (8 * bit)
					i++
				}
			}
			if size == 0 {
				size = 0x10000
			}
			if int(offset)+int(size) > len(baseContent) {
				return nil, xerrors.Errorf("copy instruction out of bounds: %w", ginternals.ErrCorruptDelta)
			}
			out.Write(baseContent[offset : offset+size])
		} else {
			// INSERT: the low 7 bits are the literal length.
			size := int(op & 0x7f)
			if i+size > len(delta) {
				return nil, xerrors.Errorf("insert instruction out of bounds: %w", ginternals.ErrCorruptDelta)
			}
			out.Write(delta[i : i+size])
			i += size
		}
	}

	if out.Len() != int(targetSize) {
		return nil, xerrors.Errorf("delta produced %d bytes, expected %d: %w", out.Len(), targetSize, ginternals.ErrCorruptDelta)
	}
	return object.New(base.Type(), out.Bytes()), nil
}
