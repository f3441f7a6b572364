package util

import "encoding/base64"

// urlSafe is RFC 4648 §5 base64, no padding -- used for the HTTP API's
// path segments (spec §6.1).
var urlSafe = base64.RawURLEncoding

// EncodeURLSafe encodes bytes for use in a URL path segment.
func EncodeURLSafe(b []byte) string {
	return urlSafe.EncodeToString(b)
}

// DecodeURLSafe decodes a URL path segment back to bytes. The server
// must reject malformed input with 400 (spec §6.1); callers do that by
// checking the returned error.
func DecodeURLSafe(s string) ([]byte, error) {
	return urlSafe.DecodeString(s)
}
