// Package server serves the site over HTTP: localized pages, the blog,
// legal documents, sitemap, health checks and, in development, live reload
// over a websocket.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/systemlogs/folio/internal/config"
	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/health"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/locale"
	"github.com/systemlogs/folio/internal/logging"
	"github.com/systemlogs/folio/internal/middleware"
	"github.com/systemlogs/folio/internal/portfolio"
	"github.com/systemlogs/folio/internal/version"
	"github.com/systemlogs/folio/internal/watcher"
)

// Server serves the site.
type Server struct {
	config    *config.Config
	langs     i18n.Set
	catalog   *i18n.Catalog
	contentFS fs.FS
	resolver  *content.Resolver
	renderer  *content.Renderer
	router    *locale.Router
	hub       *Hub
	limiter   *middleware.RateLimiter
	health    *health.Monitor
	resumes   *portfolio.ResumeStore
	projects  *portfolio.Catalog
	source    portfolio.Source
	logger    logging.Logger
	now       func() time.Time
	handler   http.Handler

	httpServer    *http.Server
	serverMutex   sync.RWMutex
	shutdownOnce  sync.Once
	isShutdown    bool
	shutdownMutex sync.RWMutex
}

// Option customizes a Server.
type Option func(*Server)

// WithContentFS serves content from fsys instead of the configured
// directory on disk.
func WithContentFS(fsys fs.FS) Option {
	return func(s *Server) { s.contentFS = fsys }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithProjectSource replaces the configured projects source.
func WithProjectSource(src portfolio.Source) Option {
	return func(s *Server) { s.source = src }
}

// WithClock sets the time source used for the footer year.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server for cfg. Content is read from cfg.Content.Dir on
// every request.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	langs, err := cfg.Languages()
	if err != nil {
		return nil, fmt.Errorf("language configuration: %w", err)
	}
	catalog, err := i18n.LoadCatalog(langs)
	if err != nil {
		return nil, fmt.Errorf("loading dictionaries: %w", err)
	}

	s := &Server{
		config:  cfg,
		langs:   langs,
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.contentFS == nil {
		s.contentFS = os.DirFS(cfg.Content.Dir)
	}

	s.resolver = content.NewResolver(s.contentFS, langs, content.Options{
		BlogDir:  cfg.Content.BlogDir,
		LegalDir: cfg.Content.LegalDir,
		Logger:   s.logger,
	})
	s.renderer = content.NewRenderer(content.DefaultTOCDepth)
	s.resumes = portfolio.NewResumeStore(s.contentFS, cfg.Portfolio.ResumeDir, langs, s.logger)
	s.projects = s.newProjectCatalog()
	s.router = locale.NewRouter(locale.Options{
		Languages:        langs,
		CookieName:       cfg.I18n.CookieName,
		ExcludedPrefixes: cfg.I18n.ExcludedPrefixes,
		AgnosticPrefixes: cfg.I18n.AgnosticPrefixes,
		Logger:           s.logger,
	})
	if cfg.Development.HotReload {
		s.hub = NewHub(s.logger)
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, 0, s.logger)
	}

	s.health = s.newHealthMonitor()
	s.handler = s.buildHandler()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Resolver returns the content resolver backing the server.
func (s *Server) Resolver() *content.Resolver {
	return s.resolver
}

// ContentDir returns the configured content directory on disk.
func (s *Server) ContentDir() string {
	return s.config.Content.Dir
}

// Languages returns the supported language set.
func (s *Server) Languages() i18n.Set {
	return s.langs
}

// Hub returns the live-reload hub, or nil when hot reload is off.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)

	security := middleware.DefaultSecurityConfig()
	if s.config.IsDevelopment() {
		security = middleware.DevelopmentSecurityConfig()
	}

	chain := middleware.NewChain(
		logging.Middleware(s.logger.WithComponent("http")),
		middleware.SecurityHeaders(security),
		middleware.ForPrefix("/api", middleware.CORS(s.config.Server.AllowedOrigins)),
	)
	if s.limiter != nil {
		chain.Add(middleware.ForPrefix("/api", middleware.RateLimit(s.limiter)))
	}
	chain.Add(s.router.Handler)

	return chain.Apply(mux)
}

// Start serves until ctx is cancelled or Shutdown is called. With hot
// reload enabled it also watches the content tree and tells connected
// browsers to reload on change. Start on a server that was already shut
// down returns nil at once.
func (s *Server) Start(ctx context.Context) error {
	if s.shuttingDown() {
		return nil
	}

	if s.hub != nil {
		go s.hub.Run(ctx)

		fw, err := s.watchContent(ctx)
		if err != nil {
			s.logger.Warn(ctx, err, "Hot reload disabled: cannot watch content")
		} else {
			defer fw.Stop()
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	// Shutdown may have run between the check above and publishing
	// httpServer, in which case it had nothing to stop.
	if s.shuttingDown() {
		return nil
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, err, "Shutdown failed")
		}
	}()

	s.logger.Info(ctx, "Serving site", "address", server.Addr, "base_url", s.config.Site.BaseURL,
		"languages", s.langs.Strings(), "hot_reload", s.hub != nil, "health_checks", s.health.Names())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) watchContent(ctx context.Context) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(watcher.DefaultDebounce, s.logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.ContentFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddHandler(s.handleContentChange)

	if err := fw.AddRecursive(s.config.Content.Dir); err != nil {
		fw.Stop()
		return nil, err
	}
	fw.Start(ctx)
	s.logger.Debug(ctx, "Watching content", "directories", fw.WatchedPaths())
	return fw, nil
}

// handleContentChange tells browsers to reload. Nothing is cached, so the
// next request already sees the new content. Markdown edits are reported as
// content changes; anything else, such as resume or project data, asks for a
// full reload.
func (s *Server) handleContentChange(ctx context.Context, events []watcher.ChangeEvent) error {
	msg := UpdateMessage{Type: MessageContentChanged}
	for _, e := range events {
		s.logger.Info(ctx, "Content changed", "path", e.Path, "change", e.Type.String())
		if !isMarkdown(e.Path) {
			msg.Type = MessageFullReload
		}
	}
	if len(events) == 1 {
		msg.Target = events[0].Path
	}
	return s.hub.Broadcast(msg)
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

// allowedOrigins lists the hosts a live-reload connection may come from.
func (s *Server) allowedOrigins() []string {
	port := s.config.Server.Port
	hosts := []string{
		fmt.Sprintf("%s:%d", s.config.Server.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
	if u, err := url.Parse(s.config.Site.BaseURL); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// newProjectCatalog reads projects from GitHub when a user or token is
// configured and from the projects file otherwise. Only the GitHub list is
// filtered by the showcase topic; the file is curated by hand.
func (s *Server) newProjectCatalog() *portfolio.Catalog {
	cfg := s.config.Portfolio
	opts := portfolio.CatalogOptions{TTL: cfg.CacheTTL, Logger: s.logger}

	source := s.source
	switch {
	case source != nil:
	case cfg.UsesGitHub():
		source = &portfolio.GitHubSource{User: cfg.GitHubUser, Token: cfg.GitHubToken}
		opts.Topic = cfg.ShowcaseTopic
	default:
		source = portfolio.NewFileSource(s.contentFS, cfg.ProjectsFile)
	}
	return portfolio.NewCatalog(source, opts)
}

// goroutineLimit is the goroutine count above which the server reports
// itself degraded.
const goroutineLimit = 10000

func (s *Server) newHealthMonitor() *health.Monitor {
	m := health.NewMonitor(s.logger, 5*time.Second)
	m.Version = version.Get().Short()
	m.Languages = s.langs.Strings()

	m.Register(health.NewCheckFunc("server", true, func(ctx context.Context) health.Check {
		if s.shuttingDown() {
			return health.Check{Status: health.StatusUnhealthy, Message: "shutting down"}
		}
		return health.Check{Status: health.StatusHealthy}
	}))
	m.Register(health.DirectoryCheck("content", "blog", s.contentFS, s.config.Content.BlogDir))
	m.Register(health.GoroutineCheck(goroutineLimit))
	if s.hub != nil {
		m.Register(health.NewCheckFunc("live_reload", false, func(ctx context.Context) health.Check {
			return health.Check{
				Status:   health.StatusHealthy,
				Metadata: map[string]interface{}{"clients": s.hub.ClientCount()},
			}
		}))
	}
	return m
}

// Shutdown gracefully shuts down the server and disconnects live-reload
// clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.shutdownMutex.Lock()
		s.isShutdown = true
		s.shutdownMutex.Unlock()

		if s.hub != nil {
			s.hub.Close()
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

func (s *Server) shuttingDown() bool {
	s.shutdownMutex.RLock()
	defer s.shutdownMutex.RUnlock()
	return s.isShutdown
}

// StaticFS returns the static asset tree served under /static/.
func (s *Server) StaticFS() (fs.FS, error) {
	return fs.Sub(s.contentFS, path.Clean(s.config.Content.StaticDir))
}
