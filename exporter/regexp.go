package exporter

import (
	"regexp"
	"strings"
)

var (
	reKwarg    = regexp.MustCompile(`(\(\?P<(.*?)>.*?\))`)
	reArg      = regexp.MustCompile(`(\(.*?\))`)
	reOptional = regexp.MustCompile(`(?:\w|/)(?:\?|\*)`)
	reOptGroup = regexp.MustCompile(`\(\?:.*\)(?:\?|\*)`)
	reEscape   = regexp.MustCompile(`([^\\]?)\\`)
)

// TemplateFromRegexp converts a regular-expression route, as used by
// Django style URL configurations, into the token form:
//
//	^test/arg/(\d+)/(\w)$             -> /test/arg/<>/<>
//	^test/named/(?P<str>\w+)$         -> /test/named/<str>
//	^test/optionnal/(?:capturing)?group$ -> /test/optionnal/group
//
// Anchors are dropped, optional groups and optional characters are
// removed, named groups become named tokens, remaining groups become
// anonymous tokens and escapes are undone. The conversion is textual and
// does not validate the expression.
func TemplateFromRegexp(pattern string) string {
	out := strings.NewReplacer("^", "", "$", "").Replace(pattern)

	for _, m := range reOptGroup.FindAllString(out, -1) {
		out = strings.ReplaceAll(out, m, "")
	}
	for _, m := range reOptional.FindAllString(out, -1) {
		out = strings.ReplaceAll(out, m, "")
	}
	for _, m := range reKwarg.FindAllStringSubmatch(out, -1) {
		out = strings.ReplaceAll(out, m[1], "<"+m[2]+">")
	}
	for _, m := range reArg.FindAllString(out, -1) {
		out = strings.ReplaceAll(out, m, "<>")
	}

	return "/" + reEscape.ReplaceAllString(out, "$1")
}
