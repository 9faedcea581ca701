// Package packwire speaks the smart-HTTP git-upload-pack protocol:
// pkt-line framing, ref discovery, and the want/done negotiation that
// gets a packfile out of a remote.
package packwire

import (
	"fmt"

	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
)

// flushPkt is the 4-byte sentinel that ends a block of pkt-lines.
const flushPkt = "0000"

// decodePktLine reads a single pkt-line from the front of b. It
// returns the line's payload (nil for a flush-pkt), and the number of
// bytes consumed so the caller can advance past it.
func decodePktLine(b []byte) (payload []byte, consumed int, isFlush bool, err error) {
	if len(b) < 4 {
		return nil, 0, false, xerrors.Errorf("truncated pkt-line length: %w", ginternals.ErrRefAdvertisementMalformed)
	}

	var length int
	if _, err := fmt.Sscanf(string(b[:4]), "%04x", &length); err != nil {
		return nil, 0, false, xerrors.Errorf("invalid pkt-line length %q: %w", b[:4], ginternals.ErrRefAdvertisementMalformed)
	}
	if length == 0 {
		return nil, 4, true, nil
	}
	if length < 4 || len(b) < length {
		return nil, 0, false, xerrors.Errorf("pkt-line declares length %d past end of input: %w", length, ginternals.ErrRefAdvertisementMalformed)
	}

	payload = b[4:length]
	return payload, length, false, nil
}

// encodePktLine frames payload as a single pkt-line: a 4-hex-digit
// length prefix (including itself) followed by the payload.
func encodePktLine(payload string) string {
	return fmt.Sprintf("%04x%s", len(payload)+4, payload)
}

// splitPktLines decodes every pkt-line in b up to the end of input,
// reading past flush-pkts. Flush-pkts are dropped from the result;
// callers that need to see them should use decodePktLine directly.
func splitPktLines(b []byte) ([][]byte, error) {
	var lines [][]byte
	for len(b) > 0 {
		payload, n, isFlush, err := decodePktLine(b)
		if err != nil {
			return nil, err
		}
		b = b[n:]
		if isFlush {
			continue
		}
		lines = append(lines, payload)
	}
	return lines, nil
}
