// Package cmd provides the command-line interface for folio.
//
// Configuration System:
//
//	Settings are resolved from several sources, highest priority first:
//	1. Command-line flags (--port, --content, ...)
//	2. FOLIO_<SECTION>_<OPTION> environment variables, including values
//	   from a .env file in the working directory
//	3. The configuration file: --config, FOLIO_CONFIG_FILE, or .folio.yml
//	4. Built-in defaults
//
// Environment Variables:
//
//	FOLIO_CONFIG_FILE: Path to a custom configuration file
//	FOLIO_SERVER_PORT: Override server port
//	FOLIO_SITE_BASE_URL: Public URL used in canonical links and the sitemap
//	FOLIO_I18N_LANGUAGES: Comma-separated supported languages
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/systemlogs/folio/internal/config"
	"github.com/systemlogs/folio/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A bilingual portfolio and blog server backed by Markdown files",
	Long: `folio serves a personal portfolio and blog in English and German from a
directory of Markdown files. Every page lives under a language prefix
(/en/..., /de/...); visitors without one are redirected based on their
language cookie or browser preferences.

Quick Start:
  folio init                      Create a content skeleton and .folio.yml
  folio new-post "Hello World"    Scaffold a blog post
  folio serve                     Start the server with hot reload
  folio list                      List posts per language
  folio build                     Export the site as static files`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .folio.yml, can also use FOLIO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig wires viper to the configuration file and environment.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag
//  2. FOLIO_CONFIG_FILE environment variable
//  3. .folio.yml in the current directory
//
// A .env file is loaded first so its values behave like real environment
// variables; variables already set in the environment win.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Ignoring unreadable .env file:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FOLIO_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".folio")
	}

	viper.SetEnvPrefix("FOLIO")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys()

	// A missing file falls back to defaults; a broken one is reported by Load.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "Failed to read config file:", err)
	}
}

// bindEnvKeys registers every configuration key so viper.Unmarshal sees
// FOLIO_ variables even when the key is absent from the file.
func bindEnvKeys() {
	for _, key := range []string{
		"server.port", "server.host", "server.environment", "server.allowed_origins", "server.rate_limit",
		"site.title", "site.author", "site.base_url",
		"content.dir", "content.blog_dir", "content.legal_dir", "content.static_dir",
		"portfolio.resume_dir", "portfolio.projects_file", "portfolio.github_user", "portfolio.github_token",
		"portfolio.showcase_topic", "portfolio.cache_ttl",
		"i18n.languages", "i18n.default", "i18n.cookie_name",
		"development.hot_reload",
		"build.output_dir", "build.clean",
		"logging.level", "logging.format",
	} {
		viper.BindEnv(key)
	}
}

// loadConfig loads and validates the resolved configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: w,
	}), nil
}

// commandContext returns the command's context, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
