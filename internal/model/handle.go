package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// NamePrefix marks every ephemeral model created by this process. The
// interrupt sweep relies on it to find instances without in-memory state.
const NamePrefix = "MODELFORGE-"

const nameSuffixBytes = 6

// Handle identifies one requested model instance. EphemeralName is the
// identity used for provisioning and disposal.
type Handle struct {
	BaseModel     string
	Temperature   float64
	SystemPrompt  string
	EphemeralName string
}

// Namer derives ephemeral names from wall-clock time plus random entropy so
// two handles derived in the same instant never collide.
type Namer struct {
	Now  func() time.Time
	Rand io.Reader
}

func NewNamer() Namer {
	return Namer{Now: time.Now, Rand: rand.Reader}
}

// Derive builds a handle for the given role parameters.
func (n Namer) Derive(baseModel string, temperature float64, systemPrompt string) (Handle, error) {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	reader := n.Rand
	if reader == nil {
		reader = rand.Reader
	}
	buf := make([]byte, nameSuffixBytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return Handle{}, fmt.Errorf("read random bytes: %w", err)
	}
	name := NamePrefix + sanitizeBaseModel(baseModel) + "-" +
		now().UTC().Format("20060102T150405Z") + "-" + hex.EncodeToString(buf)
	return Handle{
		BaseModel:     baseModel,
		Temperature:   temperature,
		SystemPrompt:  systemPrompt,
		EphemeralName: name,
	}, nil
}

// sanitizeBaseModel flattens tag and namespace separators so the derived
// name is itself a valid model name.
func sanitizeBaseModel(base string) string {
	replacer := strings.NewReplacer("/", "-", ":", "-")
	return replacer.Replace(base)
}
