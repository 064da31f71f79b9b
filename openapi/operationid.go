package openapi

import (
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
)

// operationID derives an identifier such as "getItemsById" from the method
// and path template of a route. Path parameters read as "by <name>".
func operationID(info RouteInfo) string {
	words := []string{strings.ToLower(info.Method)}
	for seg := range strings.SplitSeq(info.Path, "/") {
		if seg == "" {
			continue
		}
		open := strings.IndexByte(seg, '{')
		end := strings.IndexByte(seg, '}')
		if open < 0 || end < open {
			words = append(words, seg)
			continue
		}
		if prefix := seg[:open]; prefix != "" {
			words = append(words, prefix)
		}
		words = append(words, "by", seg[open+1:end])
		if suffix := seg[end+1:]; suffix != "" {
			words = append(words, suffix)
		}
	}

	joined := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.Join(words, "_"))

	return strcase.LowerCamelCase(joined)
}
