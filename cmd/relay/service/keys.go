package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media classes get their own key prefix so they never collide
const (
	PrefixTTS   = "tts"
	PrefixImage = "image"
)

var extensions = map[string]string{
	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/aac":   "aac",
	"audio/mp4":   "m4a",
	"image/jpeg":  "jpg",
	"image/png":   "png",
	"image/gif":   "gif",
	"image/webp":  "webp",
}

// KeyGenerator builds unique object keys: {prefix}/{YYYYMMDD}/{HHMMSS}-{uuid}.{ext}
type KeyGenerator struct {
	now   func() time.Time
	token func() string
}

// NewKeyGenerator creates a generator using the wall clock and random UUIDs
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		now:   time.Now,
		token: func() string { return uuid.New().String() },
	}
}

// MediaKey returns a fresh key for a media object. Two calls never return
// the same key, even for identical content.
func (g *KeyGenerator) MediaKey(prefix, contentType string) string {
	now := g.now().UTC()
	return fmt.Sprintf("%s/%s/%s-%s.%s",
		prefix,
		now.Format("20060102"),
		now.Format("150405"),
		g.token(),
		extensionFor(contentType),
	)
}

// SidecarKey is the key of the metadata object stored next to mediaKey
func SidecarKey(mediaKey string) string {
	return mediaKey + ".json"
}

func extensionFor(contentType string) string {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := extensions[base]; ok {
		return ext
	}
	return "bin"
}
