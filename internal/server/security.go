package server

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

// CSPConfig holds Content-Security-Policy configuration.
type CSPConfig struct {
	DefaultSrc     []string
	ScriptSrc      []string
	StyleSrc       []string
	ImgSrc         []string
	ConnectSrc     []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string
}

// APICSPConfig returns a strict policy for JSON endpoints, which load nothing.
func APICSPConfig() CSPConfig {
	return CSPConfig{
		DefaultSrc:     []string{"'none'"},
		FrameAncestors: []string{"'none'"},
		BaseURI:        []string{"'none'"},
		FormAction:     []string{"'none'"},
	}
}

// BuildCSPHeader builds a Content-Security-Policy header value from config.
func (cfg CSPConfig) BuildCSPHeader() string {
	var directives []string
	add := func(name string, sources []string) {
		if len(sources) > 0 {
			directives = append(directives, name+" "+strings.Join(sources, " "))
		}
	}
	add("default-src", cfg.DefaultSrc)
	add("script-src", cfg.ScriptSrc)
	add("style-src", cfg.StyleSrc)
	add("img-src", cfg.ImgSrc)
	add("connect-src", cfg.ConnectSrc)
	add("frame-ancestors", cfg.FrameAncestors)
	add("base-uri", cfg.BaseURI)
	add("form-action", cfg.FormAction)
	return strings.Join(directives, "; ")
}

// SecurityHeadersWithCSP adds the standard security headers and cfg's policy.
func SecurityHeadersWithCSP(cfg CSPConfig, next http.Handler) http.Handler {
	cspHeader := cfg.BuildCSPHeader()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cspHeader != "" {
			w.Header().Set("Content-Security-Policy", cspHeader)
		}
		next.ServeHTTP(w, r)
	})
}

// SanitizeURL returns input if it is a relative URL or an http(s) URL, and ""
// otherwise. Document links pass through it before being offered for download.
func SanitizeURL(input string) string {
	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)
	switch {
	case input == "":
		return ""
	case strings.Contains(lower, "javascript:"):
		return ""
	case strings.HasPrefix(input, "/"), strings.HasPrefix(input, "./"), strings.HasPrefix(input, "../"):
		return input
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return input
	}
	return ""
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// ValidateIdentifier reports whether input is 1-64 characters of letters,
// digits, underscores and hyphens, starting with a letter or underscore.
func ValidateIdentifier(input string) bool {
	return len(input) > 0 && len(input) <= 64 && identifierRe.MatchString(input)
}

// SanitizeUserInput trims whitespace and drops control characters other than
// newline and tab.
func SanitizeUserInput(input string) string {
	return StripControl(strings.TrimSpace(input))
}

// StripControl drops control characters other than newline and tab, leaving
// surrounding whitespace as given.
func StripControl(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= 0x20 || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LimitStringLength truncates input to at most maxLength bytes without
// splitting a UTF-8 sequence.
func LimitStringLength(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}
