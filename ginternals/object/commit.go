package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/internal/readutil"
	"golang.org/x/xerrors"
)

// Signature is the author or committer of a commit: a name, an email, and
// a point in time with its timezone offset.
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// String renders the signature in its on-disk form:
// "name <email> unix-seconds tz", e.g. "bert2 <shuairan@gmail.com> 0 +0000".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool {
	return s.Name == "" && s.Email == "" && s.Time.IsZero()
}

// NewSignatureFromBytes parses a signature line of the form
// "name <email> unix-seconds tz".
func NewSignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature

	data := readutil.ReadTo(b, '<')
	if data == nil {
		return sig, xerrors.Errorf("could not find signature name: %w", ginternals.ErrCorruptObject)
	}
	sig.Name = strings.TrimSpace(string(data))
	offset := len(data) + 1 // +1 to skip "<"

	data = readutil.ReadTo(b[offset:], '>')
	if data == nil {
		return sig, xerrors.Errorf("could not find signature email: %w", ginternals.ErrCorruptObject)
	}
	sig.Email = string(data)
	offset += len(data) + 2 // +2 to skip "> "
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature ends after email: %w", ginternals.ErrCorruptObject)
	}

	timestamp := readutil.ReadTo(b[offset:], ' ')
	if timestamp == nil {
		return sig, xerrors.Errorf("could not find signature timestamp: %w", ginternals.ErrCorruptObject)
	}
	offset += len(timestamp) + 1
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature ends after timestamp: %w", ginternals.ErrCorruptObject)
	}

	secs, err := strconv.ParseInt(string(timestamp), 10, 64)
	if err != nil {
		return sig, xerrors.Errorf("invalid timestamp %q: %w", timestamp, ginternals.ErrCorruptObject)
	}
	sig.Time = time.Unix(secs, 0)

	tz := b[offset:]
	parsed, err := time.Parse("-0700", string(tz))
	if err != nil {
		return sig, xerrors.Errorf("invalid timezone %q: %w", tz, ginternals.ErrCorruptObject)
	}
	sig.Time = sig.Time.In(parsed.Location())
	return sig, nil
}

// CommitOptions holds the optional fields used when building a new commit.
type CommitOptions struct {
	Message string
	// ParentID is the commit's single parent, if any. This core stores
	// at most one parent even though multiple may be read from a
	// foreign commit.
	ParentID ginternals.Oid
	// Committer defaults to Author when left zero.
	Committer Signature
}

// Commit is a git commit object.
type Commit struct {
	rawObject *Object

	treeID   ginternals.Oid
	parentID ginternals.Oid

	author    Signature
	committer Signature
	message   string
}

// NewCommit builds a new Commit. The Oids are not validated against an
// object store; that's the caller's responsibility.
func NewCommit(treeID ginternals.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		parentID:  opts.ParentID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
	}
	if c.committer.IsZero() {
		c.committer = author
	}
	c.rawObject = c.ToObject()
	return c
}

// NewCommitFromObject decodes o as a Commit.
//
// Encoding (LF-terminated lines):
//
//	tree <hex-oid>
//	[parent <hex-oid>]*
//	author <name> <<email>> <unix-seconds> <tz>
//	committer <name> <<email>> <unix-seconds> <tz>
//	<blank line>
//	<message>
//
// Zero or more parent lines are accepted, but only the first is kept.
func NewCommitFromObject(o *Object) (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, xerrors.Errorf("type %s is not a commit: %w", o.typ, ginternals.ErrNotACommit)
	}
	c := &Commit{rawObject: o}

	objData := o.Bytes()
	offset := 0
	sawParent := false
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		if line == nil {
			return nil, xerrors.Errorf("commit has no terminating blank line: %w", ginternals.ErrCorruptObject)
		}
		offset += len(line) + 1 // +1 for the \n

		if len(line) == 0 {
			c.message = string(objData[offset:])
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			return nil, xerrors.Errorf("malformed commit header line %q: %w", line, ginternals.ErrCorruptObject)
		}
		var err error
		switch string(kv[0]) {
		case "tree":
			c.treeID, err = ginternals.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid tree id %q: %w", kv[1], err)
			}
		case "parent":
			if !sawParent {
				c.parentID, err = ginternals.NewOidFromChars(kv[1])
				if err != nil {
					return nil, xerrors.Errorf("invalid parent id %q: %w", kv[1], err)
				}
				sawParent = true
			}
			// Extra parent lines beyond the first are accepted but
			// dropped: this core models only a single parent.
		case "author":
			c.author, err = NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid author signature: %w", err)
			}
		case "committer":
			c.committer, err = NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid committer signature: %w", err)
			}
		}
	}

	if c.treeID.IsZero() {
		return nil, xerrors.Errorf("commit has no tree: %w", ginternals.ErrCorruptObject)
	}
	if c.author.IsZero() {
		return nil, xerrors.Errorf("commit has no author: %w", ginternals.ErrCorruptObject)
	}
	return c, nil
}

// ID returns the commit's OID.
func (c *Commit) ID() ginternals.Oid { return c.rawObject.ID() }

// TreeID returns the OID of the commit's tree.
func (c *Commit) TreeID() ginternals.Oid { return c.treeID }

// ParentID returns the OID of the commit's parent, or NullOid if it's a
// root commit.
func (c *Commit) ParentID() ginternals.Oid { return c.parentID }

// Author returns the commit's author signature.
func (c *Commit) Author() Signature { return c.author }

// Committer returns the commit's committer signature.
func (c *Commit) Committer() Signature { return c.committer }

// Message returns the commit message, including its trailing newline.
func (c *Commit) Message() string { return c.message }

// ToObject serializes the commit to its Object form.
func (c *Commit) ToObject() *Object {
	if c.rawObject != nil {
		return c.rawObject
	}

	buf := new(bytes.Buffer)
	buf.WriteString("tree ")
	buf.WriteString(c.treeID.String())
	buf.WriteByte('\n')

	if !c.parentID.IsZero() {
		buf.WriteString("parent ")
		buf.WriteString(c.parentID.String())
		buf.WriteByte('\n')
	}

	buf.WriteString("author ")
	buf.WriteString(c.author.String())
	buf.WriteByte('\n')

	buf.WriteString("committer ")
	buf.WriteString(c.committer.String())
	buf.WriteByte('\n')

	buf.WriteByte('\n')
	buf.WriteString(c.message)

	c.rawObject = New(TypeCommit, buf.Bytes())
	return c.rawObject
}
