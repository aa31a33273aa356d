package render

import (
	"fmt"
	"strings"
)

// Format selects the output encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatNDJSON
)

// ParseFormat accepts text, json and ndjson, plus the aliases plaintext and jsonl.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "plaintext":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	}
	return FormatText, fmt.Errorf("unknown output format %q (want text, json or ndjson)", s)
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatNDJSON:
		return "ndjson"
	}
	return "text"
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

// Streams reports whether the format needs a streamed reply.
func (f Format) Streams() bool { return f == FormatNDJSON }
