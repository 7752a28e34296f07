package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// fingerprint returns a SHA-256 hex digest of the value's JSON form.
// encoding/json emits map keys in sorted order, so equal maps always hash
// equal.
func fingerprint(value map[string]any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
