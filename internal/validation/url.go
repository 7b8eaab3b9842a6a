package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL validates an absolute http(s) URL such as the site base URL
// written into the sitemap and canonical links.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// Only allow http/https schemes to prevent protocol handlers
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}

	dangerous := []string{";", "|", "`", "$", "(", ")", "<", ">", "\"", "'", "\\", "\n", "\r"}
	for _, char := range dangerous {
		if strings.Contains(rawURL, char) {
			return fmt.Errorf("URL contains dangerous character: %s", char)
		}
	}

	if strings.Contains(rawURL, " ") {
		return fmt.Errorf("URL contains spaces")
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	return nil
}

// ValidateLocalRedirect checks that target is a same-site absolute path
// safe to use as a redirect Location. Scheme-relative ("//host") and
// backslash variants browsers treat as such are rejected.
func ValidateLocalRedirect(target string) error {
	if target == "" {
		return fmt.Errorf("redirect target cannot be empty")
	}

	if !strings.HasPrefix(target, "/") {
		return fmt.Errorf("redirect target must be an absolute path: %s", target)
	}

	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fmt.Errorf("redirect target must not be scheme-relative: %s", target)
	}

	for _, r := range target {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("redirect target contains control characters")
		}
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid redirect target: %w", err)
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return fmt.Errorf("redirect target must be local: %s", target)
	}

	return nil
}
