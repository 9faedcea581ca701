package packwire

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
)

// Ref is a single remote reference.
type Ref struct {
	Name string
	OID  ginternals.Oid
}

// DiscoverOptions controls ref discovery.
type DiscoverOptions struct {
	// RefsOnly drops the synthetic "HEAD" advertisement some servers
	// inline alongside refs/heads/* and refs/tags/*, matching
	// `git ls-remote --refs`.
	RefsOnly bool
}

// DiscoverRefs performs the first half of the smart-HTTP handshake:
// GET <url>/info/refs?service=git-upload-pack, parsed into a sorted
// list of refs.
func DiscoverRefs(client *http.Client, remoteURL string, opts DiscoverOptions) ([]Ref, error) {
	resp, err := client.Get(strings.TrimSuffix(remoteURL, "/") + "/info/refs?service=git-upload-pack")
	if err != nil {
		return nil, xerrors.Errorf("could not reach %s: %w", remoteURL, ginternals.ErrNetworkError)
	}
	defer resp.Body.Close() //nolint:errcheck // response already fully read below

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerrors.Errorf("%s responded %s: %w", remoteURL, resp.Status, ginternals.ErrNetworkError)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("could not read ref advertisement: %w", ginternals.ErrNetworkError)
	}

	lines, err := splitPktLines(body)
	if err != nil {
		return nil, err
	}

	refs, err := parseRefAdvertisement(lines)
	if err != nil {
		return nil, err
	}

	if opts.RefsOnly {
		filtered := refs[:0]
		for _, r := range refs {
			if r.Name != "HEAD" {
				filtered = append(filtered, r)
			}
		}
		refs = filtered
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// parseRefAdvertisement parses the pkt-line body of an info/refs
// response. The server usually opens with a "# service=..." line
// (dropped here), then one "<oid> <name>\0<capabilities>" line
// followed by plain "<oid> <name>" lines.
func parseRefAdvertisement(lines [][]byte) ([]Ref, error) {
	refs := make([]Ref, 0, len(lines))
	sawMaster := false

	for _, line := range lines {
		if bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		// The first ref line carries a NUL-separated capability list.
		if i := bytes.IndexByte(line, 0); i >= 0 {
			line = line[:i]
		}
		line = bytes.TrimRight(line, "\n")

		fields := bytes.SplitN(line, []byte(" "), 2)
		if len(fields) != 2 {
			return nil, xerrors.Errorf("malformed ref line %q: %w", line, ginternals.ErrRefAdvertisementMalformed)
		}

		oid, err := ginternals.NewOidFromStr(string(fields[0]))
		if err != nil {
			return nil, xerrors.Errorf("malformed ref line %q: %w", line, ginternals.ErrRefAdvertisementMalformed)
		}
		name := string(fields[1])
		if name == ginternals.MasterRef {
			sawMaster = true
		}
		refs = append(refs, Ref{Name: name, OID: oid})
	}

	if !sawMaster {
		return nil, ginternals.ErrNoMasterAdvertised
	}
	return refs, nil
}

// BuildWantRequest builds the pkt-line body of a git-upload-pack POST
// requesting a single branch tip with no history the client already
// has: "want <oid>\n", flush, "done\n".
func BuildWantRequest(want ginternals.Oid) []byte {
	var buf bytes.Buffer
	buf.WriteString(encodePktLine(fmt.Sprintf("want %s\n", want.String())))
	buf.WriteString(flushPkt)
	buf.WriteString(encodePktLine("done\n"))
	return buf.Bytes()
}
