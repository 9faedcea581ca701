package packwire

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"strings"

	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
)

const uploadPackContentType = "application/x-git-upload-pack-request"

// FetchPack negotiates a single-branch, no-history fetch against the
// remote's git-upload-pack endpoint and returns the raw packfile
// bytes (header through trailing checksum, with the leading NAK
// pkt-line already stripped).
func FetchPack(client *http.Client, remoteURL string, want ginternals.Oid) ([]byte, error) {
	req := BuildWantRequest(want)

	resp, err := client.Post(
		strings.TrimSuffix(remoteURL, "/")+"/git-upload-pack",
		uploadPackContentType,
		bytes.NewReader(req),
	)
	if err != nil {
		return nil, xerrors.Errorf("could not reach %s: %w", remoteURL, ginternals.ErrNetworkError)
	}
	defer resp.Body.Close() //nolint:errcheck // response already fully read below

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerrors.Errorf("%s responded %s: %w", remoteURL, resp.Status, ginternals.ErrNetworkError)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("could not read upload-pack response: %w", ginternals.ErrNetworkError)
	}

	ackPayload, n, isFlush, err := decodePktLine(body)
	if err != nil {
		return nil, xerrors.Errorf("could not read NAK line: %w", ginternals.ErrExpectedNAK)
	}
	if isFlush || !bytes.HasPrefix(bytes.TrimRight(ackPayload, "\n"), []byte("NAK")) {
		return nil, xerrors.Errorf("response did not start with NAK: %w", ginternals.ErrExpectedNAK)
	}

	return body[n:], nil
}
