package render

import (
	"html/template"
	"net/url"
	"strings"
)

// safeURL lets only relative and http(s) links into href/src attributes.
func safeURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return template.URL(u.String())
	}
	return "#"
}
