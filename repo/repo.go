// Package repo ties together the object store, working tree, and
// pack-wire client into the repository-level operations the CLI
// exposes: init, clone, and checkout.
package repo

import (
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/objstore"
)

// Repo is an open repository: a working directory, its .git directory,
// and the object store rooted there.
type Repo struct {
	fs      afero.Fs
	WorkDir string
	GitDir  string
	Store   *objstore.Store
}

// Open returns a Repo rooted at workDir, assuming workDir/.git already
// exists (created by a prior Init or Clone).
func Open(fs afero.Fs, workDir string) (*Repo, error) {
	gitDir := filepath.Join(workDir, ginternals.DotGitDirName)
	if ok, err := afero.DirExists(fs, gitDir); err != nil || !ok {
		if err != nil {
			return nil, xerrors.Errorf("could not check %s: %w", gitDir, ginternals.ErrIoError)
		}
		return nil, xerrors.Errorf("%s: %w", workDir, ginternals.ErrInvalidArgument)
	}

	return &Repo{
		fs:      fs,
		WorkDir: workDir,
		GitDir:  gitDir,
		Store:   objstore.New(fs, gitDir),
	}, nil
}

// MasterOID reads the OID currently pointed to by refs/heads/master.
func (r *Repo) MasterOID() (ginternals.Oid, error) {
	data, err := afero.ReadFile(r.fs, ginternals.MasterRefPath(r.GitDir))
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not read %s: %w", ginternals.MasterRef, ginternals.ErrIoError)
	}
	return ginternals.NewOidFromStr(trimNewline(string(data)))
}

// SetMasterOID points refs/heads/master at oid, creating the file if
// it doesn't exist yet.
func (r *Repo) SetMasterOID(oid ginternals.Oid) error {
	p := ginternals.MasterRefPath(r.GitDir)
	if err := r.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return xerrors.Errorf("could not create %s: %w", filepath.Dir(p), ginternals.ErrIoError)
	}
	if err := afero.WriteFile(r.fs, p, []byte(oid.String()+"\n"), 0o644); err != nil {
		return xerrors.Errorf("could not write %s: %w", ginternals.MasterRef, ginternals.ErrIoError)
	}
	return nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
