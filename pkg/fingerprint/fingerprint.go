// Package fingerprint derives deterministic cache keys from content and
// optimization parameters.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyLength is the number of hex characters in a fingerprint.
const KeyLength = 32

// Params are the optimization parameters that affect a cached outcome.
// Role and task are included verbatim, not normalized: two calls that differ
// only in task phrasing are distinct cache entries.
type Params struct {
	AgentRole       string
	TaskDescription string
	TargetTokens    int
	Strategy        string
}

// encode writes the parameters in a fixed field order with unambiguous
// separators so the digest is stable across calls.
func (p Params) encode() []byte {
	return fmt.Appendf(nil, "role=%q\x00task=%q\x00target=%d\x00strategy=%q",
		p.AgentRole, p.TaskDescription, p.TargetTokens, p.Strategy)
}

// Key returns the fingerprint for a content/parameter pair.
func Key(content string, p Params) string {
	contentSum := sha256.Sum256([]byte(content))
	paramSum := sha256.Sum256(p.encode())

	combined := sha256.New()
	fmt.Fprintf(combined, "%x:%x", contentSum, paramSum)
	return hex.EncodeToString(combined.Sum(nil))[:KeyLength]
}
