package object

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/internal/readutil"
	"golang.org/x/xerrors"
)

// TreeEntryMode is the mode of an entry inside a tree. Only the three
// values below are supported by this core; decoding a tree keeps any
// other value as-is, and checkout rejects it with ErrUnsupportedMode.
type TreeEntryMode int32

// Supported tree entry modes. Symlinks (0o120000) and gitlinks (0o160000)
// are explicitly unsupported by this core.
const (
	ModeDirectory  TreeEntryMode = 0o040000
	ModeFile       TreeEntryMode = 0o100644
	ModeExecutable TreeEntryMode = 0o100755
)

// IsValid reports whether m is one of the three supported modes.
func (m TreeEntryMode) IsValid() bool {
	switch m {
	case ModeDirectory, ModeFile, ModeExecutable:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type pointed at by an entry of this mode.
func (m TreeEntryMode) ObjectType() Type {
	if m == ModeDirectory {
		return TypeTree
	}
	return TypeBlob
}

// TreeEntry is one (mode, name, oid) triple inside a Tree.
type TreeEntry struct {
	Mode TreeEntryMode
	Name string
	ID   ginternals.Oid
}

// Tree is an ordered sequence of TreeEntry.
type Tree struct {
	rawObject *Object
	entries   []TreeEntry
}

// NewTree builds a Tree from entries, which MUST already be sorted in
// canonical tree order (see SortEntries).
func NewTree(entries []TreeEntry) *Tree {
	t := &Tree{entries: entries}
	t.rawObject = t.ToObject()
	return t
}

// NewTreeFromObject decodes o as a Tree.
//
// Encoding: a concatenation of entries, each
// "<octal mode, no leading zeros> <name>\x00<20 raw oid bytes>", with no
// trailing terminator after the last entry.
func NewTreeFromObject(o *Object) (*Tree, error) {
	if o.typ != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.typ, ginternals.ErrNotATree)
	}

	objData := o.Bytes()
	entries := []TreeEntry{}
	offset := 0
	for offset < len(objData) {
		data := readutil.ReadTo(objData[offset:], ' ')
		if data == nil {
			return nil, xerrors.Errorf("could not find mode of tree entry %d: %w", len(entries), ginternals.ErrCorruptObject)
		}
		offset += len(data) + 1 // +1 for the space

		mode, err := strconv.ParseInt(string(data), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("could not parse mode of tree entry %d: %w", len(entries), ginternals.ErrCorruptObject)
		}

		name := readutil.ReadTo(objData[offset:], 0)
		if name == nil {
			return nil, xerrors.Errorf("could not find name of tree entry %d: %w", len(entries), ginternals.ErrCorruptObject)
		}
		offset += len(name) + 1 // +1 for the NUL

		if offset+ginternals.OidSize > len(objData) {
			return nil, xerrors.Errorf("not enough bytes for oid of tree entry %d: %w", len(entries), ginternals.ErrCorruptObject)
		}
		oid, err := ginternals.NewOidFromBytes(objData[offset : offset+ginternals.OidSize])
		if err != nil {
			return nil, xerrors.Errorf("invalid oid for tree entry %d: %w", len(entries), ginternals.ErrCorruptObject)
		}
		offset += ginternals.OidSize

		entries = append(entries, TreeEntry{
			Mode: TreeEntryMode(mode),
			Name: string(name),
			ID:   oid,
		})
	}
	if offset != len(objData) {
		return nil, xerrors.Errorf("trailing bytes after last tree entry: %w", ginternals.ErrCorruptObject)
	}

	return &Tree{rawObject: o, entries: entries}, nil
}

// Entries returns a copy of the tree's entries, in the order they were
// provided (the canonical tree order, when built by write-tree).
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the tree's OID.
func (t *Tree) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// ToObject serializes the tree to its Object form.
func (t *Tree) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}
	buf := new(bytes.Buffer)
	for _, e := range t.entries {
		buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}
	t.rawObject = New(TypeTree, buf.Bytes())
	return t.rawObject
}

// sortKey returns the byte string compared by the canonical tree order: a
// directory's name is compared as if suffixed with "/", so that "foo"
// (dir) sorts after "foo.txt" but before "foo0".
func sortKey(name string, isDir bool) string {
	if isDir {
		return name + "/"
	}
	return name
}

// SortEntries orders names (and their isDir flag, same index) into the
// canonical tree order required for OID-compatible serialization:
// byte-wise comparison of name with an implicit trailing "/" on
// directories. The returned slice is the permutation of indices into
// names/isDir in sorted order.
func SortEntries(names []string, isDir []bool) []int {
	idx := make([]int, len(names))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		return sortKey(names[ia], isDir[ia]) < sortKey(names[ib], isDir[ib])
	})
	return idx
}
