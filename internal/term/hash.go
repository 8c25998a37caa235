package term

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for changing the encoding later.
const (
	DomainClause = "clausal/clause/v1"
	DomainTheory = "clausal/theory/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ClauseHash returns the content address of a clause.
func ClauseHash(c *Clause) (string, error) {
	data, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("ClauseHash: %w", err)
	}
	return hashWithDomain(DomainClause, data), nil
}

// TheoryHash returns the content address of an ordered list of clause hashes.
func TheoryHash(clauseHashes []string) (string, error) {
	data, err := MarshalCanonical(clauseHashes)
	if err != nil {
		return "", fmt.Errorf("TheoryHash: %w", err)
	}
	return hashWithDomain(DomainTheory, data), nil
}
