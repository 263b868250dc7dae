package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// ComputeAnalysisHash fingerprints the inputs of an analysis run: the dataset
// hash, the ordered variable declarations, the axes and any option flags.
// Equal inputs always produce equal hashes.
func ComputeAnalysisHash(dataset Hash, variables []string, axes []string, flags map[string]interface{}) Hash {
	var data strings.Builder
	data.WriteString(dataset.String())
	data.WriteString("|vars")
	for _, v := range variables {
		data.WriteString("|")
		data.WriteString(v)
	}
	data.WriteString("|axes")
	for _, a := range axes {
		data.WriteString("|")
		data.WriteString(a)
	}

	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data.WriteString("|")
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%v", flags[key]))
	}

	return NewHash([]byte(data.String()))
}
