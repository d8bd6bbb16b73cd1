package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint returns the hex SHA-256 of the compact JSON serialization of
// the report grid. The serialization is order- and whitespace-sensitive and
// contains no time-dependent fields, so equal grids always hash equal and a
// reordered grid never does.
func Fingerprint(values [][]any) string {
	data, err := json.Marshal(values)
	if err != nil {
		// Report grids hold only strings and numbers; Marshal cannot fail on
		// them. Keep the zero hash distinct from real ones just in case.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
