// Package serializers turns request payloads into validated model fields and
// models into response bodies.
package serializers

import (
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/types"
)

type Mode int

const (
	Read Mode = iota
	Write
)

func (m Mode) String() string {
	if m == Write {
		return "write"
	}
	return "read"
}

// Schema is resolved once per request and carries the caller for write rules.
type Schema struct {
	Mode   Mode
	Caller permissions.Caller
}

// Select maps a request method and caller to the schema serving it.
func Select(method string, caller permissions.Caller) Schema {
	if types.SafeMethods[method] {
		return Schema{Mode: Read, Caller: caller}
	}
	return Schema{Mode: Write, Caller: caller}
}
