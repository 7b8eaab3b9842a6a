package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/logging"
)

// DefaultShowcaseTopic marks repositories that belong on the projects page.
const DefaultShowcaseTopic = "showcase"

// DefaultGitHubAPI is the GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// maxResponseSize caps how much of a GitHub response is read.
const maxResponseSize = 5 << 20

// Project is one entry on the projects page.
type Project struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	URL         string    `yaml:"url" json:"url"`
	Stars       int       `yaml:"stars" json:"stars"`
	Updated     time.Time `yaml:"updated" json:"updated"`
	Language    string    `yaml:"language" json:"language"`
	Topics      []string  `yaml:"topics" json:"topics"`
}

// HasTopic reports whether the project carries topic, ignoring case.
func (p Project) HasTopic(topic string) bool {
	for _, t := range p.Topics {
		if strings.EqualFold(t, topic) {
			return true
		}
	}
	return false
}

// Source supplies the unfiltered project list.
type Source interface {
	Projects(ctx context.Context) ([]Project, error)
}

// FileSource reads projects from a YAML list in the content tree. A missing
// file yields no projects.
type FileSource struct {
	fsys fs.FS
	file string
}

// NewFileSource creates a source reading file from fsys.
func NewFileSource(fsys fs.FS, file string) *FileSource {
	return &FileSource{fsys: fsys, file: path.Clean(file)}
}

func (f *FileSource) Projects(ctx context.Context) ([]Project, error) {
	data, err := fs.ReadFile(f.fsys, f.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.WrapIO(err, errors.ErrCodeReadFailed, "read projects").WithPath(f.file)
	}

	var projects []Project
	if err := yaml.Unmarshal(data, &projects); err != nil {
		return nil, errors.WrapValidation(err, errors.ErrCodeConfigInvalid, "projects could not be decoded").WithPath(f.file)
	}
	return projects, nil
}

// GitHubSource lists public repositories through the GitHub REST API. With
// a User it lists that user's repositories; otherwise the repositories of
// the token's owner.
type GitHubSource struct {
	Client  *http.Client
	BaseURL string
	User    string
	Token   string
}

type githubRepo struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	PushedAt    time.Time `json:"pushed_at"`
	Language    *string   `json:"language"`
	Topics      []string  `json:"topics"`
	Private     bool      `json:"private"`
}

func (g *GitHubSource) Projects(ctx context.Context) ([]Project, error) {
	endpoint, err := g.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "folio")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch repositories: HTTP %d", resp.StatusCode)
	}

	var repos []githubRepo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repositories: %w", err)
	}

	projects := make([]Project, 0, len(repos))
	for _, repo := range repos {
		if repo.Private || repo.Language == nil || *repo.Language == "" {
			continue
		}
		p := Project{
			Name:     repo.Name,
			URL:      repo.HTMLURL,
			Stars:    repo.Stars,
			Updated:  repo.PushedAt,
			Language: *repo.Language,
			Topics:   repo.Topics,
		}
		if repo.Description != nil {
			p.Description = *repo.Description
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (g *GitHubSource) endpoint() (string, error) {
	base := g.BaseURL
	if base == "" {
		base = DefaultGitHubAPI
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid GitHub API URL: %w", err)
	}

	query := url.Values{"per_page": {"100"}, "sort": {"pushed"}}
	if g.User != "" {
		u.Path = path.Join(u.Path, "users", g.User, "repos")
		query.Set("type", "owner")
	} else {
		u.Path = path.Join(u.Path, "user", "repos")
		query.Set("visibility", "public")
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Showcase keeps projects with a name, URL and description and, when topic
// is set, that topic. The result is sorted by last update, newest first.
func Showcase(projects []Project, topic string) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Name == "" || p.URL == "" || strings.TrimSpace(p.Description) == "" {
			continue
		}
		if topic != "" && !p.HasTopic(topic) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Updated.Equal(out[j].Updated) {
			return out[i].Updated.After(out[j].Updated)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CatalogOptions configure a Catalog.
type CatalogOptions struct {
	// Topic filters projects; empty keeps every described project.
	Topic string
	// TTL is how long a fetched list is reused. Zero fetches every time.
	TTL    time.Duration
	Logger logging.Logger
}

// Catalog serves the filtered project list. Fetches are serialized and the
// last good list is served when the source fails.
type Catalog struct {
	source Source
	topic  string
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	cached  []Project
	fetched time.Time
	valid   bool
}

// NewCatalog creates a catalog over source.
func NewCatalog(source Source, opts CatalogOptions) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Catalog{
		source: source,
		topic:  opts.Topic,
		ttl:    opts.TTL,
		logger: logger.WithComponent("projects"),
		now:    time.Now,
	}
}

// Projects returns the showcased projects.
func (c *Catalog) Projects(ctx context.Context) ([]Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.ttl > 0 && c.now().Sub(c.fetched) < c.ttl {
		return append([]Project(nil), c.cached...), nil
	}

	projects, err := c.source.Projects(ctx)
	if err != nil {
		if c.valid {
			c.logger.Warn(ctx, err, "Serving stale project list")
			return append([]Project(nil), c.cached...), nil
		}
		return nil, errors.Wrap(err, errors.ErrorTypeIO, errors.ErrCodeProjectsFailed, "projects unavailable")
	}

	c.cached = Showcase(projects, c.topic)
	c.fetched = c.now()
	c.valid = true
	return append([]Project(nil), c.cached...), nil
}
