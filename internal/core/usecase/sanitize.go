package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// controlFilter removes control characters left after whitespace folding and
// composes the remaining text into NFC so equal slugs compare equal.
var controlFilter = transform.Chain(runes.Remove(runes.Predicate(unicode.IsControl)), norm.NFC)

// sanitizeText reduces untrusted input to plain single-line text: markup is
// dropped (script/style bodies included), entities are decoded, whitespace
// runs collapse to one space, control characters go away.
func sanitizeText(s string) string {
	if s == "" {
		return ""
	}

	text := stripTags(s)
	text = strings.Join(strings.Fields(text), " ")

	out, _, err := transform.String(controlFilter, text)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if isRawTextTag(z) {
				skipDepth++
			}
		case html.EndTagToken:
			if skipDepth > 0 && isRawTextTag(z) {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
