package stryve

import "strings"

const (
	ProductionBaseURL = "https://app.stryve.me/api/v1"
	SandboxBaseURL    = "http://127.0.0.1:8000/api/v1"
)

// ResolveBaseURL picks the API host: a non-blank custom URL wins (trailing
// slashes stripped), otherwise the sandbox or production default.
func ResolveBaseURL(customURL string, sandbox bool) string {
	if strings.TrimSpace(customURL) != "" {
		return strings.TrimRight(strings.TrimSpace(customURL), "/")
	}
	if sandbox {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}
