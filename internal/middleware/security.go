package middleware

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// SecurityConfig holds the response security headers.
type SecurityConfig struct {
	CSP                *CSPConfig
	HSTS               *HSTSConfig
	XFrameOptions      string
	ContentTypeNoSniff bool
	ReferrerPolicy     string
	PermissionsPolicy  map[string][]string
}

// CSPConfig holds Content Security Policy configuration
type CSPConfig struct {
	DefaultSrc     []string
	ScriptSrc      []string
	StyleSrc       []string
	ImgSrc         []string
	ConnectSrc     []string
	FontSrc        []string
	ObjectSrc      []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string

	UpgradeInsecureRequests bool
}

// HSTSConfig holds HTTP Strict Transport Security configuration
type HSTSConfig struct {
	MaxAge            int
	IncludeSubDomains bool
	Preload           bool
}

// DefaultSecurityConfig returns headers for a production site. Inline
// scripts are not allowed.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CSP: &CSPConfig{
			DefaultSrc:     []string{"'self'"},
			ScriptSrc:      []string{"'self'"},
			StyleSrc:       []string{"'self'", "'unsafe-inline'"},
			ImgSrc:         []string{"'self'", "data:", "https:"},
			ConnectSrc:     []string{"'self'"},
			FontSrc:        []string{"'self'"},
			ObjectSrc:      []string{"'none'"},
			FrameAncestors: []string{"'none'"},
			BaseURI:        []string{"'self'"},
			FormAction:     []string{"'self'"},
		},
		HSTS: &HSTSConfig{
			MaxAge:            31536000, // 1 year
			IncludeSubDomains: true,
		},
		XFrameOptions:      "DENY",
		ContentTypeNoSniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		PermissionsPolicy: map[string][]string{
			"camera":      nil,
			"geolocation": nil,
			"microphone":  nil,
			"payment":     nil,
		},
	}
}

// DevelopmentSecurityConfig allows the inline live-reload script and its
// websocket connection.
func DevelopmentSecurityConfig() *SecurityConfig {
	config := DefaultSecurityConfig()
	config.CSP.ScriptSrc = append(config.CSP.ScriptSrc, "'unsafe-inline'")
	config.CSP.ConnectSrc = append(config.CSP.ConnectSrc, "ws:", "wss:")
	config.HSTS = nil
	return config
}

// SecurityHeaders sets the configured headers on every response.
func SecurityHeaders(config *SecurityConfig) Middleware {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	csp := ""
	if config.CSP != nil {
		csp = buildCSPHeader(config.CSP)
	}
	permissions := buildPermissionsPolicyHeader(config.PermissionsPolicy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if config.HSTS != nil && r.TLS != nil {
				h.Set("Strict-Transport-Security", buildHSTSHeader(config.HSTS))
			}
			if config.XFrameOptions != "" {
				h.Set("X-Frame-Options", config.XFrameOptions)
			}
			if config.ContentTypeNoSniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if permissions != "" {
				h.Set("Permissions-Policy", permissions)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func buildCSPHeader(csp *CSPConfig) string {
	var directives []string

	addDirective := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, fmt.Sprintf("%s %s", name, strings.Join(values, " ")))
		}
	}

	addDirective("default-src", csp.DefaultSrc)
	addDirective("script-src", csp.ScriptSrc)
	addDirective("style-src", csp.StyleSrc)
	addDirective("img-src", csp.ImgSrc)
	addDirective("connect-src", csp.ConnectSrc)
	addDirective("font-src", csp.FontSrc)
	addDirective("object-src", csp.ObjectSrc)
	addDirective("frame-ancestors", csp.FrameAncestors)
	addDirective("base-uri", csp.BaseURI)
	addDirective("form-action", csp.FormAction)

	if csp.UpgradeInsecureRequests {
		directives = append(directives, "upgrade-insecure-requests")
	}

	return strings.Join(directives, "; ")
}

func buildHSTSHeader(hsts *HSTSConfig) string {
	header := fmt.Sprintf("max-age=%d", hsts.MaxAge)
	if hsts.IncludeSubDomains {
		header += "; includeSubDomains"
	}
	if hsts.Preload {
		header += "; preload"
	}
	return header
}

// buildPermissionsPolicyHeader renders features in sorted order so the
// header is stable.
func buildPermissionsPolicyHeader(policy map[string][]string) string {
	names := make([]string, 0, len(policy))
	for name := range policy {
		names = append(names, name)
	}
	sort.Strings(names)

	policies := make([]string, 0, len(names))
	for _, name := range names {
		policies = append(policies, fmt.Sprintf("%s=(%s)", name, strings.Join(policy[name], " ")))
	}
	return strings.Join(policies, ", ")
}
