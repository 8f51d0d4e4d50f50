package token

import "encoding/base64"

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
