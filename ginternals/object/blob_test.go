package object_test

import (
	"testing"

	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/stretchr/testify/assert"
)

func TestBlob(t *testing.T) {
	t.Parallel()

	data := "hello world"
	o := object.New(object.TypeBlob, []byte(data))
	blob := object.NewBlob(o)

	assert.Equal(t, 11, blob.Size())
	assert.Equal(t, []byte(data), blob.Bytes())
	assert.Equal(t, o, blob.ToObject())
	assert.Equal(t, "95d09f2b10159347eece71399a7e2e907ea3df4f", blob.ID().String())
}
