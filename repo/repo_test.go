package repo_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/repo"
)

func TestInit_CreatesExpectedLayout(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repo.Init(fs, "/repo")
	require.NoError(t, err)

	for _, p := range []string{
		"/repo/.git/objects/info",
		"/repo/.git/objects/pack",
		"/repo/.git/refs/heads",
		"/repo/.git/refs/tags",
	} {
		ok, err := afero.DirExists(fs, p)
		require.NoError(t, err)
		require.True(t, ok, p)
	}

	head, err := afero.ReadFile(fs, "/repo/.git/HEAD")
	require.NoError(t, err)
	require.Equal(t, "ref: refs/heads/master\n", string(head))
	require.Equal(t, "/repo/.git", r.GitDir)
}

func TestInit_RejectsRepositoryWithExistingObjects(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := repo.Init(fs, "/repo")
	require.NoError(t, err)

	require.NoError(t, fs.MkdirAll("/repo/.git/objects/95", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/.git/objects/95/d09f2b10159347eece71399a7e2e907ea3df4f", []byte("x"), 0o444))

	_, err = repo.Init(fs, "/repo")
	require.ErrorIs(t, err, ginternals.ErrInvalidArgument)
}

func TestOpen_FailsWithoutGitDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0o755))

	_, err := repo.Open(fs, "/repo")
	require.ErrorIs(t, err, ginternals.ErrInvalidArgument)
}

func TestCheckout_UpdatesMasterRef(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repo.Init(fs, "/repo")
	require.NoError(t, err)

	tree := object.NewTree(nil)
	treeOid, err := r.Store.Write(tree.ToObject())
	require.NoError(t, err)

	author := object.Signature{Name: "a", Email: "a@b.c", Time: time.Unix(0, 0).UTC()}
	commit := object.NewCommit(treeOid, author, &object.CommitOptions{Message: "init\n"})
	commitOid, err := r.Store.Write(commit.ToObject())
	require.NoError(t, err)

	require.NoError(t, r.Checkout(commitOid))

	got, err := r.MasterOID()
	require.NoError(t, err)
	require.Equal(t, commitOid, got)
}
