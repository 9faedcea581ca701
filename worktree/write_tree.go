package worktree

import (
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
	"github.com/nullpointr/corvid/objstore"
)

// dotGitName is excluded from every directory scan: the working tree
// never includes its own metadata directory in a tree object.
const dotGitName = ".git"

// WriteTree walks dir, persisting a blob for every regular file and a
// tree for every subdirectory, and returns the OID of the tree
// representing dir itself.
func WriteTree(fs afero.Fs, store *objstore.Store, dir string) (ginternals.Oid, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not read %s: %w", dir, ginternals.ErrIoError)
	}

	names := make([]string, 0, len(infos))
	isDir := make([]bool, 0, len(infos))
	filtered := infos[:0]
	for _, info := range infos {
		if info.Name() == dotGitName {
			continue
		}
		filtered = append(filtered, info)
		names = append(names, info.Name())
		isDir = append(isDir, info.IsDir())
	}

	order := object.SortEntries(names, isDir)
	entries := make([]object.TreeEntry, 0, len(order))

	for _, idx := range order {
		info := filtered[idx]
		p := filepath.Join(dir, info.Name())

		switch {
		case info.IsDir():
			oid, err := WriteTree(fs, store, p)
			if err != nil {
				return ginternals.NullOid, err
			}
			entries = append(entries, object.TreeEntry{Mode: object.ModeDirectory, Name: info.Name(), ID: oid})
		case info.Mode().IsRegular():
			data, err := afero.ReadFile(fs, p)
			if err != nil {
				return ginternals.NullOid, xerrors.Errorf("could not read %s: %w", p, ginternals.ErrIoError)
			}
			blob := object.New(object.TypeBlob, data)
			oid, err := store.Write(blob)
			if err != nil {
				return ginternals.NullOid, xerrors.Errorf("could not persist %s: %w", p, err)
			}

			mode := object.ModeFile
			if info.Mode()&0o111 != 0 {
				mode = object.ModeExecutable
			}
			entries = append(entries, object.TreeEntry{Mode: mode, Name: info.Name(), ID: oid})
		default:
			return ginternals.NullOid, xerrors.Errorf("%s: %w", p, ginternals.ErrUnsupportedEntry)
		}
	}

	tree := object.NewTree(entries)
	oid, err := store.Write(tree.ToObject())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist tree %s: %w", dir, err)
	}
	return oid, nil
}
