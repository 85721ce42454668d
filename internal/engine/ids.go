package engine

import (
	"crypto/rand"
	"encoding/hex"
)

func newJobID() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
