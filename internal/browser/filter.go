package browser

import "strings"

// staticExtensions are asset suffixes that rarely matter for UX debugging.
var staticExtensions = []string{
	".js", ".css", ".woff", ".woff2", ".ttf", ".eot", ".svg", ".png",
	".jpg", ".jpeg", ".gif", ".ico", ".map",
}

// ShouldLogRequest reports whether a network request is worth capturing.
// Library code and static assets are dropped; API traffic is always kept.
func ShouldLogRequest(url string) bool {
	if strings.Contains(url, "/node_modules/") {
		return false
	}

	for _, ext := range staticExtensions {
		// Handle URLs with query params (e.g. app.css?v=2).
		if strings.HasSuffix(url, ext) || strings.Contains(url, ext+"?") {
			return false
		}
	}

	if strings.Contains(url, "/api/") || strings.Contains(url, "/graphql") {
		return true
	}

	return true
}
