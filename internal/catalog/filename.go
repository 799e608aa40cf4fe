package catalog

import "strings"

const maxFilenameLen = 100

// Sanitize turns a title into a filesystem-safe stem: lowercase, every run of
// characters outside [a-z0-9] collapsed to a single hyphen, hyphens trimmed
// from both ends, then cut to 100 bytes.
func Sanitize(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	out := b.String()
	if len(out) > maxFilenameLen {
		out = out[:maxFilenameLen]
	}
	return out
}

// RecordFilename returns the storage filename for a title, or "" when the
// title has no usable characters.
func RecordFilename(title string) string {
	stem := Sanitize(title)
	if stem == "" {
		return ""
	}
	return stem + ".json"
}
