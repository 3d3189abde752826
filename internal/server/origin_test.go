package server

import (
	"net/http/httptest"
	"testing"
)

// TestOriginAllowList verifies configured origins are matched after
// normalization and everything else is rejected.
func TestOriginAllowList(t *testing.T) {
	defer SetConfig(nil)
	SetConfig(&Config{AllowedOrigins: []string{"HTTP://Example.COM"}})

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"http://example.com", true},
		{"http://EXAMPLE.com", true},
		{"https://example.com", false},
		{"http://evil.example", false},
		{"", false},
		{"not a url", false},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/ws", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := isOriginAllowed(r); got != tc.allowed {
			t.Errorf("Origin %q: allowed=%v, expected %v", tc.origin, got, tc.allowed)
		}
	}
}

// TestOriginWildcardAllowsAll verifies the wildcard origin opens the door to
// any syntactically valid origin.
func TestOriginWildcardAllowsAll(t *testing.T) {
	defer SetConfig(nil)
	SetConfig(&Config{AllowedOrigins: []string{"*"}})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://anywhere.example")
	if !isOriginAllowed(r) {
		t.Error("Wildcard config rejected a valid origin")
	}

	r.Header.Set("Origin", "")
	if isOriginAllowed(r) {
		t.Error("Missing origin allowed under wildcard")
	}
}
