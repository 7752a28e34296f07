package runner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

const runIDEntropyBytes = 6

// NewRunID returns a timestamp-ordered identifier for one pipeline run.
func NewRunID() (string, error) {
	return newRunIDAt(time.Now(), rand.Reader)
}

func newRunIDAt(now time.Time, entropy io.Reader) (string, error) {
	if entropy == nil {
		return "", fmt.Errorf("entropy reader is nil")
	}
	buf := make([]byte, runIDEntropyBytes)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return "", fmt.Errorf("read run id entropy: %w", err)
	}
	return now.UTC().Format("20060102T150405Z") + "-" + hex.EncodeToString(buf), nil
}
