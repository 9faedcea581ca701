package packfile_test

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/ginternals/packfile"
)

// packBuilder assembles a valid in-memory pack for testing, so tests
// exercise the real entry-header and zlib framing instead of a
// hand-typed byte literal.
type packBuilder struct {
	entries [][]byte
}

func (b *packBuilder) addObject(typ int, payload []byte) {
	b.entries = append(b.entries, buildEntry(typ, len(payload), payload))
}

func (b *packBuilder) addRefDelta(base ginternals.Oid, delta []byte) {
	header := buildEntryHeader(7, len(delta))
	entry := append(header, base.Bytes()...)
	entry = append(entry, deflate(delta)...)
	b.entries = append(b.entries, entry)
}

func (b *packBuilder) bytes() []byte {
	header := make([]byte, 12)
	copy(header[0:4], "PACK")
	binary.BigEndian.PutUint32(header[4:8], 2)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(b.entries)))

	body := append([]byte{}, header...)
	for _, e := range b.entries {
		body = append(body, e...)
	}
	sum := sha1.Sum(body)
	return append(body, sum[:]...)
}

func buildEntryHeader(typ int, size int) []byte {
	first := byte(typ<<4) | byte(size&0x0f)
	size >>= 4
	out := []byte{}
	for size > 0 {
		out = append(out, first|0x80)
		first = byte(size & 0x7f)
		size >>= 7
	}
	out = append(out, first)
	return out
}

func buildEntry(typ int, size int, payload []byte) []byte {
	header := buildEntryHeader(typ, size)
	return append(header, deflate(payload)...)
}

func deflate(b []byte) []byte {
	buf := new(bytes.Buffer)
	zw := zlib.NewWriter(buf)
	zw.Write(b) //nolint:errcheck // bytes.Buffer never fails
	zw.Close()  //nolint:errcheck // nothing to react to in a test helper
	return buf.Bytes()
}

func deltaBytes(sourceSize, targetSize int, instructions []byte) []byte {
	out := append(encodeDeltaSize(sourceSize), encodeDeltaSize(targetSize)...)
	return append(out, instructions...)
}

func encodeDeltaSize(n int) []byte {
	out := []byte{}
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n > 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func TestParse_DirectObjectsOnly(t *testing.T) {
	t.Parallel()

	var b packBuilder
	b.addObject(1, []byte("tree e5b9e846e1b468bc9597ff95d71dfacda8bd54e3\nauthor a <a@b.c> 0 +0000\ncommitter a <a@b.c> 0 +0000\n\nmsg\n"))
	b.addObject(3, []byte("hello world"))

	objs, err := packfile.Parse(b.bytes(), nil)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	require.Equal(t, object.TypeCommit, objs[0].Type())
	require.Equal(t, object.TypeBlob, objs[1].Type())
	require.Equal(t, "95d09f2b10159347eece71399a7e2e907ea3df4f", objs[1].ID().String())
}

func TestParse_ResolvesRefDeltaAgainstInPackBase(t *testing.T) {
	t.Parallel()

	base := []byte("hello world")
	baseOid := ginternals.NewOidFromContent(append([]byte("blob 11\x00"), base...))

	// COPY the first 5 bytes of base ("hello"), then INSERT " there".
	// opcode with offset-byte0 and size-byte0 present: bit0 (offset0) and bit4 (size0)
	opcode := byte(0x80 | 0x01 | 0x10)
	copyInstr := []byte{opcode, 0x00, 0x05} // offset=0, size=5 -> "hello"
	insertInstr := append([]byte{byte(len(" there"))}, []byte(" there")...)
	instructions := append(copyInstr, insertInstr...)

	delta := deltaBytes(len(base), 5+len(" there"), instructions)

	var b packBuilder
	b.addObject(3, base)
	b.addRefDelta(baseOid, delta)

	objs, err := packfile.Parse(b.bytes(), nil)
	require.NoError(t, err)
	require.Len(t, objs, 2)

	var deltaObj *object.Object
	for _, o := range objs {
		if o.ID() != baseOid {
			deltaObj = o
		}
	}
	require.NotNil(t, deltaObj)
	require.Equal(t, "hello there", string(deltaObj.Bytes()))
	require.Equal(t, object.TypeBlob, deltaObj.Type())
}

func TestParse_ResolvesRefDeltaAppearingBeforeItsBase(t *testing.T) {
	t.Parallel()

	base := []byte("hello world")
	baseOid := ginternals.NewOidFromContent(append([]byte("blob 11\x00"), base...))

	opcode := byte(0x80 | 0x01 | 0x10)
	copyInstr := []byte{opcode, 0x00, 0x05} // offset=0, size=5 -> "hello"
	insertInstr := append([]byte{byte(len(" there"))}, []byte(" there")...)
	instructions := append(copyInstr, insertInstr...)
	delta := deltaBytes(len(base), 5+len(" there"), instructions)

	var b packBuilder
	// the delta entry is written ahead of the base it references, which
	// the deferred multi-pass resolver must still handle.
	b.addRefDelta(baseOid, delta)
	b.addObject(3, base)

	objs, err := packfile.Parse(b.bytes(), nil)
	require.NoError(t, err)
	require.Len(t, objs, 2)

	var deltaObj *object.Object
	for _, o := range objs {
		if o.ID() != baseOid {
			deltaObj = o
		}
	}
	require.NotNil(t, deltaObj)
	require.Equal(t, "hello there", string(deltaObj.Bytes()))
	require.Equal(t, object.TypeBlob, deltaObj.Type())
}

func TestParse_ResolvesRefDeltaAgainstExternalBase(t *testing.T) {
	t.Parallel()

	base := object.New(object.TypeBlob, []byte("hello world"))
	opcode := byte(0x80 | 0x01 | 0x10)
	copyInstr := []byte{opcode, 0x00, 0x0b} // offset=0 size=11 -> whole base
	delta := deltaBytes(base.Size(), base.Size(), copyInstr)

	var b packBuilder
	b.addRefDelta(base.ID(), delta)

	lookup := func(oid ginternals.Oid) (*object.Object, bool) {
		if oid == base.ID() {
			return base, true
		}
		return nil, false
	}

	objs, err := packfile.Parse(b.bytes(), lookup)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	require.Equal(t, "hello world", string(objs[0].Bytes()))
}

func TestParse_RejectsChecksumMismatch(t *testing.T) {
	t.Parallel()

	var b packBuilder
	b.addObject(3, []byte("x"))
	data := b.bytes()
	data[len(data)-1] ^= 0xff

	_, err := packfile.Parse(data, nil)
	require.ErrorIs(t, err, ginternals.ErrPackChecksumMismatch)
}

func TestParse_RejectsOfsDelta(t *testing.T) {
	t.Parallel()

	var b packBuilder
	b.entries = append(b.entries, buildEntryHeader(6, 1))
	// object count in header must match entries appended
	data := b.bytes()

	_, err := packfile.Parse(data, nil)
	require.ErrorIs(t, err, ginternals.ErrPackMalformed)
}
