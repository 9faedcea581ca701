package object_test

import (
	"testing"
	"time"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/stretchr/testify/require"
)

func TestCommit_LiteralHeaderBlock(t *testing.T) {
	t.Parallel()

	treeID, err := ginternals.NewOidFromStr("e5b9e846e1b468bc9597ff95d71dfacda8bd54e3")
	require.NoError(t, err)

	author := object.Signature{
		Name:  "bert2",
		Email: "shuairan@gmail.com",
		Time:  time.Unix(0, 0).UTC(),
	}
	c := object.NewCommit(treeID, author, &object.CommitOptions{
		Message: "init\n",
	})

	want := "tree " + treeID.String() + "\n" +
		"author bert2 <shuairan@gmail.com> 0 +0000\n" +
		"committer bert2 <shuairan@gmail.com> 0 +0000\n" +
		"\n" +
		"init\n"
	require.Equal(t, want, string(c.ToObject().Bytes()))
}

func TestCommit_RoundTrip(t *testing.T) {
	t.Parallel()

	treeID, err := ginternals.NewOidFromStr("e5b9e846e1b468bc9597ff95d71dfacda8bd54e3")
	require.NoError(t, err)
	parentID, err := ginternals.NewOidFromStr("95d09f2b10159347eece71399a7e2e907ea3df4f")
	require.NoError(t, err)

	author := object.Signature{Name: "a", Email: "a@b.c", Time: time.Unix(1000, 0).UTC()}
	c := object.NewCommit(treeID, author, &object.CommitOptions{
		Message:  "hello\n",
		ParentID: parentID,
	})

	decoded, err := object.NewCommitFromObject(c.ToObject())
	require.NoError(t, err)
	require.Equal(t, treeID, decoded.TreeID())
	require.Equal(t, parentID, decoded.ParentID())
	require.Equal(t, "hello\n", decoded.Message())
	require.Equal(t, author.Name, decoded.Author().Name)
}

func TestCommit_KeepsOnlyFirstParent(t *testing.T) {
	t.Parallel()

	raw := "tree e5b9e846e1b468bc9597ff95d71dfacda8bd54e3\n" +
		"parent 95d09f2b10159347eece71399a7e2e907ea3df4f\n" +
		"parent e5b9e846e1b468bc9597ff95d71dfacda8bd54e3\n" +
		"author a <a@b.c> 0 +0000\n" +
		"committer a <a@b.c> 0 +0000\n" +
		"\n" +
		"merge\n"

	o := object.New(object.TypeCommit, []byte(raw))
	c, err := object.NewCommitFromObject(o)
	require.NoError(t, err)

	firstParent, err := ginternals.NewOidFromStr("95d09f2b10159347eece71399a7e2e907ea3df4f")
	require.NoError(t, err)
	require.Equal(t, firstParent, c.ParentID())
}

func TestCommit_RejectsMissingTree(t *testing.T) {
	t.Parallel()

	raw := "author a <a@b.c> 0 +0000\ncommitter a <a@b.c> 0 +0000\n\nmsg\n"
	o := object.New(object.TypeCommit, []byte(raw))
	_, err := object.NewCommitFromObject(o)
	require.ErrorIs(t, err, ginternals.ErrCorruptObject)
}
