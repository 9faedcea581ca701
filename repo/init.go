package repo

import (
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/objstore"
)

// Init creates a new repository rooted at workDir: .git with
// objects/info, objects/pack, refs/heads, refs/tags, and a HEAD file
// pointing at refs/heads/master.
//
// It's idempotent against an empty, pre-existing .git directory but
// fails if the repository already holds loose objects.
func Init(fs afero.Fs, workDir string) (*Repo, error) {
	gitDir := filepath.Join(workDir, ginternals.DotGitDirName)

	if hasObjects, err := hasLooseObjects(fs, gitDir); err != nil {
		return nil, err
	} else if hasObjects {
		return nil, xerrors.Errorf("%s already contains objects: %w", gitDir, ginternals.ErrInvalidArgument)
	}

	dirs := []string{
		ginternals.ObjectsInfoPath(gitDir),
		ginternals.ObjectsPackPath(gitDir),
		ginternals.RefsHeadsPath(gitDir),
		ginternals.RefsTagsPath(gitDir),
	}
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0o755); err != nil {
			return nil, xerrors.Errorf("could not create %s: %w", d, ginternals.ErrIoError)
		}
	}

	headPath := ginternals.HeadPath(gitDir)
	if err := afero.WriteFile(fs, headPath, []byte(ginternals.HeadFileContents), 0o644); err != nil {
		return nil, xerrors.Errorf("could not write %s: %w", headPath, ginternals.ErrIoError)
	}

	return &Repo{
		fs:      fs,
		WorkDir: workDir,
		GitDir:  gitDir,
		Store:   objstore.New(fs, gitDir),
	}, nil
}

// hasLooseObjects reports whether gitDir/objects already contains any
// loose object, i.e. any file under one of its 00-ff subdirectories.
func hasLooseObjects(fs afero.Fs, gitDir string) (bool, error) {
	objectsDir := ginternals.ObjectsPath(gitDir)
	entries, err := afero.ReadDir(fs, objectsDir)
	if err != nil {
		// A missing objects/ directory means this is a fresh repo.
		return false, nil
	}

	for _, e := range entries {
		if !e.IsDir() || !isLooseObjectDir(e.Name()) {
			continue
		}
		sub, err := afero.ReadDir(fs, filepath.Join(objectsDir, e.Name()))
		if err != nil {
			return false, xerrors.Errorf("could not read %s: %w", e.Name(), ginternals.ErrIoError)
		}
		if len(sub) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// isLooseObjectDir reports whether name is a valid loose-object
// fan-out directory: two hex digits (either case), 00 through ff.
func isLooseObjectDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	_, err := strconv.ParseUint(name, 16, 8)
	return err == nil
}
