package object_test

import (
	"bytes"
	"compress/zlib"
	"io/ioutil"
	"testing"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/stretchr/testify/require"
)

func TestObject_OidDeterminism(t *testing.T) {
	t.Parallel()

	// sha1("blob " + len(b) + "\0" + b) must equal the OID for any byte string b.
	o := object.New(object.TypeBlob, []byte("hello world"))
	require.Equal(t, "95d09f2b10159347eece71399a7e2e907ea3df4f", o.ID().String())
}

func TestObject_Compress_RoundTrips(t *testing.T) {
	t.Parallel()

	o := object.New(object.TypeBlob, []byte("hello world"))
	compressed, err := o.Compress()
	require.NoError(t, err)

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	framed, err := ioutil.ReadAll(zr)
	require.NoError(t, err)

	decoded, err := object.NewFromFramed(framed)
	require.NoError(t, err)
	require.Equal(t, o.ID(), decoded.ID())
	require.Equal(t, o.Bytes(), decoded.Bytes())
}

func TestObject_NewFromFramed_RejectsSizeMismatch(t *testing.T) {
	t.Parallel()

	_, err := object.NewFromFramed([]byte("blob 999\x00short"))
	require.ErrorIs(t, err, ginternals.ErrCorruptObject)
}

func TestObject_NewFromFramed_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := object.NewFromFramed([]byte("banana 5\x00hello"))
	require.ErrorIs(t, err, ginternals.ErrUnknownType)
}
