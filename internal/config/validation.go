package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/systemlogs/folio/internal/logging"
	"github.com/systemlogs/folio/internal/validation"
)

// RFC 6265 token characters.
var cookieNamePattern = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9A-Za-z]+$")

// GitHub user and organization names.
var githubUserPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("      hint: %s\n", suggestion))
			}
		}
	}

	write("Errors", vr.Errors)
	write("Warnings", vr.Warnings)

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed
// feedback. Unlike Load it also reports warnings, such as a missing content
// directory, which do not stop the server from starting.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfigDetails(&config.Server, result)
	validateSiteConfigDetails(&config.Site, result)
	validateContentConfigDetails(&config.Content, result)
	validateI18nConfigDetails(&config.I18n, result)
	validatePortfolioConfigDetails(config, result)

	if err := validatePath(config.Build.OutputDir); err != nil {
		result.addError("build.output_dir", config.Build.OutputDir, err.Error(),
			"Use a relative directory such as 'dist'")
	}

	if _, err := logging.ParseLevel(config.Logging.Level); err != nil {
		result.addWarning("logging.level", config.Logging.Level, err.Error(),
			"Use one of: debug, info, warn, error")
	}
	if config.Logging.Format != "text" && config.Logging.Format != "json" {
		result.addWarning("logging.format", config.Logging.Format, "unknown log format, text will be used",
			"Use 'text' or 'json'")
	}

	result.Valid = !result.HasErrors()

	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port, "port below 1024 requires elevated privileges",
			"Consider using a port above 1024 for development",
		)
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.addError("server.host", config.Host, err.Error(),
				"Use 'localhost' for local development",
				"Use '0.0.0.0' to bind to all interfaces",
			)
		}
	}

	validEnvs := []string{"development", "production"}
	if config.Environment != "" && !contains(validEnvs, config.Environment) {
		result.addWarning("server.environment", config.Environment, "unknown environment type",
			"Use 'development' for local authoring with hot reload",
			"Use 'production' for deployments",
		)
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if err := validation.ValidateURL(origin); err != nil {
			result.addError("server.allowed_origins", origin, err.Error(),
				"Origins look like 'https://example.com'")
		}
	}
}

func validateSiteConfigDetails(config *SiteConfig, result *ValidationResult) {
	if err := validation.ValidateURL(config.BaseURL); err != nil {
		result.addError("site.base_url", config.BaseURL, err.Error(),
			"Use the public address of the site, e.g. 'https://example.com'")
	}
	if strings.TrimSpace(config.Author) == "" {
		result.addWarning("site.author", config.Author, "author is empty and will be omitted from page footers")
	}
}

func validateContentConfigDetails(config *ContentConfig, result *ValidationResult) {
	if err := validateContentConfig(config); err != nil {
		result.addError("content", config, err.Error())
		return
	}

	if !pathExists(config.Dir) {
		result.addWarning("content.dir", config.Dir, "content directory does not exist",
			"Run 'folio init' to create a content skeleton",
		)
		return
	}

	if !pathExists(filepath.Join(config.Dir, config.BlogDir)) {
		result.addWarning("content.blog_dir", config.BlogDir, "blog directory does not exist; the blog will be empty")
	}
	if !pathExists(filepath.Join(config.Dir, config.LegalDir)) {
		result.addWarning("content.legal_dir", config.LegalDir, "legal directory does not exist; built-in legal documents will be served")
	}
}

func validatePortfolioConfigDetails(config *Config, result *ValidationResult) {
	p := &config.Portfolio
	if err := validatePortfolioConfig(p); err != nil {
		result.addError("portfolio", p, err.Error(),
			"resume_dir and projects_file are relative to content.dir")
		return
	}

	if p.GitHubUser == "" && p.GitHubToken != "" {
		result.addWarning("portfolio.github_user", p.GitHubUser,
			"no user set; the token owner's public repositories will be listed")
	}
	if !p.UsesGitHub() && pathExists(config.Content.Dir) &&
		!pathExists(filepath.Join(config.Content.Dir, p.ProjectsFile)) {
		result.addWarning("portfolio.projects_file", p.ProjectsFile,
			"projects file does not exist and no GitHub user is set; the projects page will be empty",
			"Set portfolio.github_user to list repositories tagged '"+p.ShowcaseTopic+"'")
	}
}

func validateI18nConfigDetails(config *I18nConfig, result *ValidationResult) {
	if err := validateI18nConfig(config); err != nil {
		result.addError("i18n", config, err.Error(),
			"Supported languages are two-letter codes such as 'en' and 'de'",
			"The default language must be one of the supported languages",
		)
	}

	for _, prefix := range config.AgnosticPrefixes {
		if containsPrefix(config.ExcludedPrefixes, prefix) {
			result.addWarning("i18n.agnostic_prefixes", prefix, "prefix is also excluded and will never be redirected")
		}
	}
}

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnamePattern.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func containsPrefix(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
