// Package config provides configuration management for folio using Viper
// for loading from a .folio.yml file, FOLIO_ environment variables and
// command-line flags.
//
// Configuration covers the HTTP server, site metadata used in page titles and
// the sitemap, the content directory layout, the supported languages and the
// locale cookie, development hot reload, static export and logging.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/validation"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server" json:"server"`
	Site        SiteConfig        `mapstructure:"site" yaml:"site" json:"site"`
	Content     ContentConfig     `mapstructure:"content" yaml:"content" json:"content"`
	Portfolio   PortfolioConfig   `mapstructure:"portfolio" yaml:"portfolio" json:"portfolio"`
	I18n        I18nConfig        `mapstructure:"i18n" yaml:"i18n" json:"i18n"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development" json:"development"`
	Build       BuildConfig       `mapstructure:"build" yaml:"build" json:"build"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging" json:"logging"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port" json:"port"`
	Host           string   `mapstructure:"host" yaml:"host" json:"host"`
	Environment    string   `mapstructure:"environment" yaml:"environment" json:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`

	// RateLimit is the per-client request budget per minute for /api
	// routes. Zero or less disables limiting.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

type SiteConfig struct {
	Title   string `mapstructure:"title" yaml:"title" json:"title"`
	Author  string `mapstructure:"author" yaml:"author" json:"author"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
}

type ContentConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir" json:"dir"`
	BlogDir   string `mapstructure:"blog_dir" yaml:"blog_dir" json:"blog_dir"`
	LegalDir  string `mapstructure:"legal_dir" yaml:"legal_dir" json:"legal_dir"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir" json:"static_dir"`
}

// PortfolioConfig locates the resume and project data. Paths are relative
// to content.dir. Projects come from GitHub when a user or token is set and
// from ProjectsFile otherwise.
type PortfolioConfig struct {
	ResumeDir     string        `mapstructure:"resume_dir" yaml:"resume_dir" json:"resume_dir"`
	ProjectsFile  string        `mapstructure:"projects_file" yaml:"projects_file" json:"projects_file"`
	GitHubUser    string        `mapstructure:"github_user" yaml:"github_user" json:"github_user"`
	GitHubToken   string        `mapstructure:"github_token" yaml:"-" json:"-"`
	ShowcaseTopic string        `mapstructure:"showcase_topic" yaml:"showcase_topic" json:"showcase_topic"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
}

// UsesGitHub reports whether projects are fetched from GitHub.
func (p PortfolioConfig) UsesGitHub() bool {
	return p.GitHubUser != "" || p.GitHubToken != ""
}

type I18nConfig struct {
	Languages        []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	Default          string   `mapstructure:"default" yaml:"default" json:"default"`
	CookieName       string   `mapstructure:"cookie_name" yaml:"cookie_name" json:"cookie_name"`
	ExcludedPrefixes []string `mapstructure:"excluded_prefixes" yaml:"excluded_prefixes" json:"excluded_prefixes"`
	AgnosticPrefixes []string `mapstructure:"agnostic_prefixes" yaml:"agnostic_prefixes" json:"agnostic_prefixes"`
}

type DevelopmentConfig struct {
	HotReload bool `mapstructure:"hot_reload" yaml:"hot_reload" json:"hot_reload"`
}

type BuildConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Clean     bool   `mapstructure:"clean" yaml:"clean" json:"clean"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default values shared by Load, Default and the init command.
const (
	DefaultPort       = 3000
	DefaultHost       = "localhost"
	DefaultCookieName = "NEXT_LOCALE"
	DefaultRateLimit  = 60
	DefaultCacheTTL   = 10 * time.Minute
)

// DefaultExcludedPrefixes are request paths the locale router never touches.
var DefaultExcludedPrefixes = []string{
	"/api", "/static", "/assets", "/images", "/fonts", "/ws", "/healthz",
	"/favicon.ico", "/robots.txt", "/sitemap.xml",
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, func(string) bool { return false })
	return cfg
}

// Load resolves the configuration from the global viper instance and
// validates it.
func Load() (*Config, error) {
	config, err := Resolve(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Resolve unmarshals v and applies defaults without validating, so callers
// such as "folio config validate" can report every problem at once.
func Resolve(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Comma-separated env values arrive as a single string element
	if v.IsSet("i18n.languages") {
		config.I18n.Languages = splitList(v.GetStringSlice("i18n.languages"))
	}
	if v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = splitList(v.GetStringSlice("server.allowed_origins"))
	}

	applyDefaults(&config, v.IsSet)

	return &config, nil
}

func applyDefaults(config *Config, isSet func(string) bool) {
	if config.Server.Port == 0 && !isSet("server.port") {
		config.Server.Port = DefaultPort
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}
	if config.Server.RateLimit == 0 && !isSet("server.rate_limit") {
		config.Server.RateLimit = DefaultRateLimit
	}

	if config.Site.Title == "" {
		config.Site.Title = "System Logs"
	}
	if config.Site.BaseURL == "" {
		config.Site.BaseURL = fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
	}
	config.Site.BaseURL = strings.TrimRight(config.Site.BaseURL, "/")

	if config.Content.Dir == "" {
		config.Content.Dir = "content"
	}
	if config.Content.BlogDir == "" {
		config.Content.BlogDir = "blog"
	}
	if config.Content.LegalDir == "" {
		config.Content.LegalDir = "legal"
	}
	if config.Content.StaticDir == "" {
		config.Content.StaticDir = "static"
	}

	if config.Portfolio.ResumeDir == "" {
		config.Portfolio.ResumeDir = "resume"
	}
	if config.Portfolio.ProjectsFile == "" {
		config.Portfolio.ProjectsFile = "projects.yaml"
	}
	if config.Portfolio.ShowcaseTopic == "" && !isSet("portfolio.showcase_topic") {
		config.Portfolio.ShowcaseTopic = "showcase"
	}
	if config.Portfolio.CacheTTL == 0 && !isSet("portfolio.cache_ttl") {
		config.Portfolio.CacheTTL = DefaultCacheTTL
	}

	if len(config.I18n.Languages) == 0 {
		config.I18n.Languages = []string{"en", "de"}
	}
	if config.I18n.Default == "" {
		config.I18n.Default = config.I18n.Languages[0]
	}
	if config.I18n.CookieName == "" {
		config.I18n.CookieName = DefaultCookieName
	}
	if len(config.I18n.ExcludedPrefixes) == 0 {
		config.I18n.ExcludedPrefixes = append([]string(nil), DefaultExcludedPrefixes...)
	}
	if len(config.I18n.AgnosticPrefixes) == 0 {
		config.I18n.AgnosticPrefixes = []string{"/blog"}
	}

	if !isSet("development.hot_reload") {
		config.Development.HotReload = config.Server.Environment == "development"
	}

	if config.Build.OutputDir == "" {
		config.Build.OutputDir = "dist"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Languages builds the language set described by the i18n section.
func (c *Config) Languages() (i18n.Set, error) {
	return i18n.NewSet(c.I18n.Languages, c.I18n.Default)
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validation.ValidateURL(config.Site.BaseURL); err != nil {
		return fmt.Errorf("site config: base_url: %w", err)
	}

	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}

	if err := validatePortfolioConfig(&config.Portfolio); err != nil {
		return fmt.Errorf("portfolio config: %w", err)
	}

	if err := validateI18nConfig(&config.I18n); err != nil {
		return fmt.Errorf("i18n config: %w", err)
	}

	if err := validatePath(config.Build.OutputDir); err != nil {
		return fmt.Errorf("build config: output_dir: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			return err
		}
	}

	return nil
}

func validateContentConfig(config *ContentConfig) error {
	for name, path := range map[string]string{
		"dir":        config.Dir,
		"blog_dir":   config.BlogDir,
		"legal_dir":  config.LegalDir,
		"static_dir": config.StaticDir,
	} {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	for name, path := range map[string]string{
		"blog_dir":   config.BlogDir,
		"legal_dir":  config.LegalDir,
		"static_dir": config.StaticDir,
	} {
		if filepath.IsAbs(path) {
			return fmt.Errorf("%s must be relative to content.dir: %s", name, path)
		}
	}

	return nil
}

func validatePortfolioConfig(config *PortfolioConfig) error {
	for name, path := range map[string]string{
		"resume_dir":    config.ResumeDir,
		"projects_file": config.ProjectsFile,
	} {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if filepath.IsAbs(path) {
			return fmt.Errorf("%s must be relative to content.dir: %s", name, path)
		}
	}

	if config.GitHubUser != "" && !githubUserPattern.MatchString(config.GitHubUser) {
		return fmt.Errorf("github_user %q is not a valid GitHub user name", config.GitHubUser)
	}

	if config.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative: %s", config.CacheTTL)
	}

	return nil
}

func validateI18nConfig(config *I18nConfig) error {
	if _, err := i18n.NewSet(config.Languages, config.Default); err != nil {
		return err
	}

	if !cookieNamePattern.MatchString(config.CookieName) {
		return fmt.Errorf("cookie_name %q is not a valid cookie name", config.CookieName)
	}

	for _, prefix := range append(append([]string(nil), config.ExcludedPrefixes...), config.AgnosticPrefixes...) {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("prefix %q must start with /", prefix)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
