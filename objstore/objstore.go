// Package objstore persists and retrieves loose git objects: the
// content-addressed blob/tree/commit/tag store rooted at
// <git_dir>/objects.
//
// This core never keeps a packfile around after a clone: every object
// unpacked from a fetched pack is written here as a loose object, so
// Store is the only object-lookup path the rest of the repo needs.
package objstore

import (
	"compress/zlib"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/internal/cache"
	"github.com/nullpointr/corvid/internal/errutil"
)

// defaultCacheSize bounds the in-memory read cache. Git repos routinely
// hold far more objects than fit comfortably in memory, so only a
// recently-used subset is kept; everything else is re-read from disk.
const defaultCacheSize = 1024

// Store is a loose-object database rooted at a single .git directory.
type Store struct {
	fs     afero.Fs
	gitDir string
	cache  *cache.LRU
}

// New creates a Store backed by fs, rooted at gitDir, with a bounded
// read cache of objects.
func New(fs afero.Fs, gitDir string) *Store {
	return &Store{
		fs:     fs,
		gitDir: gitDir,
		cache:  cache.NewLRU(defaultCacheSize),
	}
}

// Has reports whether oid is already present in the store.
func (s *Store) Has(oid ginternals.Oid) (bool, error) {
	if _, found := s.cache.Get(oid); found {
		return true, nil
	}
	_, err := s.fs.Stat(s.path(oid))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, xerrors.Errorf("could not stat object %s: %w", oid, ginternals.ErrIoError)
}

// Write persists o, returning its OID. Writing an object that already
// exists is a no-op: Write is idempotent, matching the content-addressed
// nature of the store.
func (s *Store) Write(o *object.Object) (ginternals.Oid, error) {
	oid := o.ID()

	found, err := s.Has(oid)
	if err != nil {
		return ginternals.NullOid, err
	}
	if found {
		return oid, nil
	}

	data, err := o.Compress()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not compress object %s: %w", oid, err)
	}

	p := s.path(oid)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not create directory for object %s: %w", oid, ginternals.ErrIoError)
	}
	// Objects are read-only once written: content-addressing means their
	// bytes never change.
	if err := afero.WriteFile(s.fs, p, data, 0o444); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist object %s: %w", oid, ginternals.ErrIoError)
	}

	s.cache.Add(oid, o)
	return oid, nil
}

// Read loads and decodes the object identified by oid.
func (s *Store) Read(oid ginternals.Oid) (o *object.Object, err error) {
	if cached, found := s.cache.Get(oid); found {
		return cached.(*object.Object), nil
	}

	p := s.path(oid)
	f, err := s.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("%s: %w", oid, ginternals.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not open object %s: %w", oid, ginternals.ErrIoError)
	}
	defer errutil.Close(f, &err)

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("object %s is not valid zlib data: %w", oid, ginternals.ErrCorruptObject)
	}
	defer errutil.Close(zr, &err)

	framed, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Errorf("could not inflate object %s: %w", oid, ginternals.ErrCorruptObject)
	}

	o, err = object.NewFromFramed(framed)
	if err != nil {
		return nil, xerrors.Errorf("object %s: %w", oid, err)
	}

	s.cache.Add(oid, o)
	return o, nil
}

func (s *Store) path(oid ginternals.Oid) string {
	return ginternals.LooseObjectPath(s.gitDir, oid.String())
}
