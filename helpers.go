package sitekit

import (
	"regexp"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

var permalinkTail = regexp.MustCompile(`/([^/]+)/?$`)

// DeriveSlug returns the last segment of permalink when it has one
// preceded by a slash, otherwise Slugify(title).
func DeriveSlug(permalink, title string) string {
	if m := permalinkTail.FindStringSubmatch(permalink); m != nil {
		return m[1]
	}
	return Slugify(title)
}

// PublicPath joins the public URL prefix and a file name.
func PublicPath(prefix, name string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + name
}
