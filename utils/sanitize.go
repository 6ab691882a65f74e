package utils

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup from text fields returned by external search APIs
// (Kakao/Naver wrap matched keywords in <b> tags) and unescapes entities.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}
