// Package idgen wraps the UUID generator so that it can be stubbed in
// tests. It lives under internal because callers should treat identifiers
// as opaque strings.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc produces a new globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }

// Short returns an upper-cased identifier fragment of n characters, used for
// human-facing references such as payment and transaction ids.
func Short(n int) string {
	id := strings.ToUpper(strings.ReplaceAll(NewFunc(), "-", ""))
	if n > 0 && n < len(id) {
		id = id[:n]
	}
	return id
}

// Parse reports whether value is a well-formed identifier; the identity
// resolver uses it to validate correlation variables before lookup.
func Parse(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
