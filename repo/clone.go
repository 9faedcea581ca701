package repo

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/ginternals/packfile"
	"github.com/nullpointr/corvid/packwire"
	"github.com/nullpointr/corvid/worktree"
)

// Clone discovers remoteURL's master branch, fetches its pack,
// persists every object it contains as a loose object, points
// refs/heads/master and HEAD at the fetched commit, and checks it out
// into destDir.
func Clone(fs afero.Fs, client *http.Client, remoteURL, destDir string, progress io.Writer) (*Repo, error) {
	fmt.Fprintf(progress, "Cloning into %q...\n", destDir)

	r, err := Init(fs, destDir)
	if err != nil {
		return nil, xerrors.Errorf("could not initialize %s: %w", destDir, err)
	}

	refs, err := packwire.DiscoverRefs(client, remoteURL, packwire.DiscoverOptions{})
	if err != nil {
		return nil, xerrors.Errorf("could not discover refs on %s: %w", remoteURL, err)
	}

	var masterOID ginternals.Oid
	found := false
	for _, ref := range refs {
		if ref.Name == ginternals.MasterRef {
			masterOID = ref.OID
			found = true
			break
		}
	}
	if !found {
		return nil, xerrors.Errorf("%s: %w", remoteURL, ginternals.ErrNoMasterAdvertised)
	}

	packData, err := packwire.FetchPack(client, remoteURL, masterOID)
	if err != nil {
		return nil, xerrors.Errorf("could not fetch pack from %s: %w", remoteURL, err)
	}

	lookupBase := func(oid ginternals.Oid) (*object.Object, bool) {
		o, err := r.Store.Read(oid)
		if err != nil {
			return nil, false
		}
		return o, true
	}

	objs, err := packfile.Parse(packData, lookupBase)
	if err != nil {
		return nil, xerrors.Errorf("could not parse pack from %s: %w", remoteURL, err)
	}

	for _, o := range objs {
		if _, err := r.Store.Write(o); err != nil {
			return nil, xerrors.Errorf("could not persist object %s: %w", o.ID(), err)
		}
	}

	if err := r.SetMasterOID(masterOID); err != nil {
		return nil, err
	}

	if err := worktree.Checkout(fs, r.Store, r.WorkDir, r.GitDir, masterOID); err != nil {
		return nil, xerrors.Errorf("could not check out %s: %w", masterOID, err)
	}

	fmt.Fprintln(progress, "...done.")
	return r, nil
}
