package prompt

import (
	"regexp"
	"strings"
)

// jsSpace is the ECMAScript WhiteSpace and LineTerminator set. RE2's \s lacks
// U+00A0, U+FEFF and the other Zs separators.
const jsSpace = `[\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`

var (
	trailingCommaObject = regexp.MustCompile(`,` + jsSpace + `*}`)
	trailingCommaArray  = regexp.MustCompile(`,` + jsSpace + `*]`)
)

func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

// Sanitize cleans up raw model output before it is sent back for repair: it
// trims whitespace, strips one layer of wrapping double quotes and drops
// trailing commas in front of a closing brace or bracket.
func Sanitize(raw string) string {
	s := strings.TrimFunc(raw, isJSSpace)

	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		if len(s) >= 2 {
			s = s[1 : len(s)-1]
		} else {
			s = ""
		}
	}

	s = trailingCommaObject.ReplaceAllString(s, "}")
	s = trailingCommaArray.ReplaceAllString(s, "]")
	return s
}
