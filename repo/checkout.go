package repo

import (
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/worktree"
)

// Checkout materializes commitOid's tree onto the working directory
// and points refs/heads/master at it, matching the repo's single-ref
// model.
func (r *Repo) Checkout(commitOid ginternals.Oid) error {
	if err := worktree.Checkout(r.fs, r.Store, r.WorkDir, r.GitDir, commitOid); err != nil {
		return xerrors.Errorf("could not check out %s: %w", commitOid, err)
	}
	return r.SetMasterOID(commitOid)
}
