package utils

import (
	"strings"
	"testing"
)

func TestNewTrackingCodeShape(t *testing.T) {
	code := NewTrackingCode("Summer Sale 2025")

	if !strings.HasPrefix(code, "summer-sale-2025-") {
		t.Errorf("code %q should start with the slugged link name", code)
	}
	parts := strings.Split(code, "-")
	suffix := parts[len(parts)-1]
	if len(suffix) != 10 {
		t.Errorf("suffix %q has length %d, want 10", suffix, len(suffix))
	}
	for _, r := range suffix {
		if !strings.ContainsRune(base62Chars, r) {
			t.Errorf("suffix contains non-base62 character %q", r)
		}
	}
}

func TestNewTrackingCodeEmptyName(t *testing.T) {
	code := NewTrackingCode("")
	if len(code) != 10 {
		t.Errorf("code for empty name should be the bare suffix, got %q", code)
	}
	if strings.Contains(code, "-") {
		t.Errorf("code for empty name should have no separator, got %q", code)
	}
}

func TestNewTrackingCodeCapsLongNames(t *testing.T) {
	code := NewTrackingCode("an extremely long promotional campaign name that keeps going")
	prefix := code[:strings.LastIndex(code, "-")]
	if len(prefix) > 20 {
		t.Errorf("slug prefix %q exceeds 20 characters", prefix)
	}
	if strings.HasSuffix(prefix, "-") {
		t.Errorf("truncated prefix %q should not end with a dash", prefix)
	}
}

func TestNewTrackingCodeUniqueness(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		code := NewTrackingCode("promo")
		if seen[code] {
			t.Fatalf("duplicate tracking code %q after %d generations", code, i)
		}
		seen[code] = true
	}
}

func TestToBase62(t *testing.T) {
	cases := map[uint64]string{
		0:  "0",
		1:  "1",
		61: "Z",
		62: "10",
	}
	for n, want := range cases {
		if got := toBase62(n); got != want {
			t.Errorf("toBase62(%d) = %q, want %q", n, got, want)
		}
	}
}
