package worktree_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/objstore"
	"github.com/nullpointr/corvid/worktree"
)

func TestWriteTree_ThenCheckout_RoundTrips(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, "/repo/.git")

	require.NoError(t, fs.MkdirAll("/repo/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("hello world"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/sub/b.txt", []byte("nested"), 0o644))
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o755))

	treeOid, err := worktree.WriteTree(fs, store, "/repo")
	require.NoError(t, err)

	author := object.Signature{Name: "a", Email: "a@b.c", Time: time.Unix(0, 0).UTC()}
	commit := object.NewCommit(treeOid, author, &object.CommitOptions{Message: "init\n"})
	commitOid, err := store.Write(commit.ToObject())
	require.NoError(t, err)

	// Checkout into a fresh working directory should reproduce both files.
	require.NoError(t, fs.MkdirAll("/checkout/.git", 0o755))
	err = worktree.Checkout(fs, store, "/checkout", "/checkout/.git", commitOid)
	require.NoError(t, err)

	got, err := afero.ReadFile(fs, "/checkout/a.txt")
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))

	got, err = afero.ReadFile(fs, "/checkout/sub/b.txt")
	require.NoError(t, err)
	require.Equal(t, "nested", string(got))
}

func TestCheckout_ClearsStalePreExistingFiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, "/repo/.git")
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/keep.txt", []byte("keep"), 0o644))

	treeOid, err := worktree.WriteTree(fs, store, "/repo")
	require.NoError(t, err)
	author := object.Signature{Name: "a", Email: "a@b.c", Time: time.Unix(0, 0).UTC()}
	commit := object.NewCommit(treeOid, author, &object.CommitOptions{Message: "init\n"})
	commitOid, err := store.Write(commit.ToObject())
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/repo/stale.txt", []byte("stale"), 0o644))
	err = worktree.Checkout(fs, store, "/repo", "/repo/.git", commitOid)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/repo/stale.txt")
	require.NoError(t, err)
	require.False(t, exists)

	got, err := afero.ReadFile(fs, "/repo/keep.txt")
	require.NoError(t, err)
	require.Equal(t, "keep", string(got))
}

func TestWriteTree_CanonicalOrderMatchesSortedEntries(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, "/repo/.git")
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o755))
	require.NoError(t, fs.MkdirAll("/repo/foo", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/foo.txt", []byte("x"), 0o644))

	treeOid, err := worktree.WriteTree(fs, store, "/repo")
	require.NoError(t, err)

	o, err := store.Read(treeOid)
	require.NoError(t, err)
	tree, err := object.NewTreeFromObject(o)
	require.NoError(t, err)

	entries := tree.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "foo.txt", entries[0].Name)
	require.Equal(t, "foo", entries[1].Name)
}
