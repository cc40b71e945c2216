package utils

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	base62Chars    = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeSuffixLen  = 10
	codeSlugMaxLen = 20
)

// NewTrackingCode builds a short, URL-safe, effectively unique code for an
// affiliate link: a slug of the link name (for readable share URLs) plus a
// base62-encoded random suffix. The DB's unique index is the final arbiter.
func NewTrackingCode(name string) string {
	prefix := slug.Make(name)
	if len(prefix) > codeSlugMaxLen {
		prefix = prefix[:codeSlugMaxLen]
		prefix = strings.TrimRight(prefix, "-")
	}

	suffix := toBase62(randomUint64())
	for len(suffix) < codeSuffixLen {
		suffix = string(base62Chars[0]) + suffix
	}
	suffix = suffix[:codeSuffixLen]

	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}

func randomUint64() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

func toBase62(n uint64) string {
	if n == 0 {
		return string(base62Chars[0])
	}
	var sb strings.Builder
	for n > 0 {
		sb.WriteByte(base62Chars[n%62])
		n /= 62
	}
	runes := []rune(sb.String())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
