// Package worktree materializes a commit's tree onto disk (checkout)
// and the reverse: turning a working directory into a tree object
// (write-tree).
package worktree

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/objstore"
)

// Checkout replaces the contents of workDir (everything except the
// .git directory rooted at gitDir) with the tree recorded by
// commitOid.
func Checkout(fs afero.Fs, store *objstore.Store, workDir, gitDir string, commitOid ginternals.Oid) error {
	o, err := store.Read(commitOid)
	if err != nil {
		return xerrors.Errorf("could not read commit %s: %w", commitOid, err)
	}
	commit, err := object.NewCommitFromObject(o)
	if err != nil {
		return xerrors.Errorf("%s: %w", commitOid, err)
	}

	if err := clearWorkDir(fs, workDir, gitDir); err != nil {
		return xerrors.Errorf("could not clear working directory: %w", ginternals.ErrIoError)
	}

	return checkoutTree(fs, store, commit.TreeID(), workDir)
}

// clearWorkDir removes everything directly under workDir except the
// .git directory, so a checkout never leaves behind files that no
// longer belong to the tree being checked out.
func clearWorkDir(fs afero.Fs, workDir, gitDir string) error {
	entries, err := afero.ReadDir(fs, workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fs.MkdirAll(workDir, 0o755)
		}
		return err
	}
	for _, e := range entries {
		p := filepath.Join(workDir, e.Name())
		if p == gitDir {
			continue
		}
		if err := fs.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}

func checkoutTree(fs afero.Fs, store *objstore.Store, treeOid ginternals.Oid, dir string) error {
	o, err := store.Read(treeOid)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", treeOid, err)
	}
	tree, err := object.NewTreeFromObject(o)
	if err != nil {
		return xerrors.Errorf("%s: %w", treeOid, err)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("could not create %s: %w", dir, ginternals.ErrIoError)
	}

	for _, entry := range tree.Entries() {
		p := filepath.Join(dir, entry.Name)

		switch entry.Mode {
		case object.ModeDirectory:
			if err := checkoutTree(fs, store, entry.ID, p); err != nil {
				return err
			}
		case object.ModeFile, object.ModeExecutable:
			blobObj, err := store.Read(entry.ID)
			if err != nil {
				return xerrors.Errorf("could not read blob %s: %w", entry.ID, err)
			}
			blob := object.NewBlob(blobObj)

			perm := os.FileMode(0o644)
			if entry.Mode == object.ModeExecutable {
				perm = 0o755
			}
			if err := afero.WriteFile(fs, p, blob.Bytes(), perm); err != nil {
				return xerrors.Errorf("could not write %s: %w", p, ginternals.ErrIoError)
			}
		default:
			return xerrors.Errorf("%s has mode %o: %w", p, entry.Mode, ginternals.ErrUnsupportedMode)
		}
	}
	return nil
}
