package logger

import "strings"

// RedactSecret masks a credential for safe logging, keeping just enough of
// the prefix to tell keys apart. "sk-abcdef123456" → "sk-a***".
// Connection URLs keep their scheme and host but lose userinfo.
func RedactSecret(v string) string {
	if v == "" {
		return ""
	}
	if i := strings.Index(v, "://"); i >= 0 {
		rest := v[i+3:]
		if at := strings.Index(rest, "@"); at >= 0 {
			return v[:i+3] + "***@" + rest[at+1:]
		}
		return v
	}
	if len(v) > 4 {
		return v[:4] + "***"
	}
	return "***"
}
