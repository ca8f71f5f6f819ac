package hashutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/songloop-games/songloop/internal/bytespool"
)

// SessionToken returns an opaque hex token derived from the current time.
func SessionToken() string {
	buf := bytespool.Get()
	defer func() {
		buf.Reset()
		bytespool.Put(buf)
	}()
	buf.WriteString(strconv.FormatInt(time.Now().UnixNano(), 10))
	hash := sha1.New()
	hash.Write(buf.Bytes())
	return hex.EncodeToString(hash.Sum(nil))
}

// RoomCode derives a short uppercase join code from the current time.
// Collisions are possible; the caller retries until the code is free.
func RoomCode() (string, error) {
	h := fnv.New32a()
	b, err := time.Now().MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal binary time.now(): %v", err)
	}
	if _, err := h.Write(b); err != nil {
		return "", fmt.Errorf("hash write error: %w", err)
	}

	return strings.ToUpper(strconv.FormatUint(uint64(h.Sum32()>>8), 36)), nil
}
