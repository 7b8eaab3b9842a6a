package server

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/portfolio"
)

type failingSource struct{}

func (failingSource) Projects(ctx context.Context) ([]portfolio.Project, error) {
	return nil, assert.AnError
}

func TestResumePage(t *testing.T) {
	fsys := testContent()
	fsys["resume/de.yaml"] = &fstest.MapFile{Data: []byte("profile:\n  name: Erika Muster\nexperience:\n  - company: Beispiel GmbH\n    title: Entwicklerin\n    start: \"2021\"\n")}
	h := newTestServer(t, testConfig(), fsys).Handler()

	t.Run("content tree overrides built-in copy", func(t *testing.T) {
		rec := get(t, h, "/de/resume")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<h1>Erika Muster</h1>")
		assert.Contains(t, body, "Entwicklerin @ Beispiel GmbH")
		assert.Contains(t, body, "2021 - Heute")
	})

	t.Run("built-in copy", func(t *testing.T) {
		rec := get(t, h, "/en/resume")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>Alex Morgan</h1>")
		assert.Contains(t, rec.Body.String(), "Professional Experience")
	})
}

func TestProjectsPage(t *testing.T) {
	t.Run("projects file", func(t *testing.T) {
		fsys := testContent()
		fsys["projects.yaml"] = &fstest.MapFile{Data: []byte(`
- name: folio
  description: This site.
  url: https://github.com/example/folio
  stars: 3
  updated: 2025-04-01T00:00:00Z
  language: Go
- name: draft
  url: https://github.com/example/draft
`)}
		h := newTestServer(t, testConfig(), fsys).Handler()

		rec := get(t, h, "/en/projects")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<a href="https://github.com/example/folio" rel="noopener noreferrer">folio</a>`)
		assert.Contains(t, body, "Updated April 1, 2025")
		assert.NotContains(t, body, "example/draft")
	})

	t.Run("no projects file", func(t *testing.T) {
		h := newTestServer(t, testConfig(), testContent()).Handler()
		rec := get(t, h, "/de/projects")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Noch keine Projekte vorhanden.")
	})

	t.Run("source failure", func(t *testing.T) {
		s, err := New(testConfig(), WithContentFS(testContent()), WithProjectSource(failingSource{}))
		require.NoError(t, err)

		rec := get(t, s.Handler(), "/en/projects")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "could not be loaded")
	})
}
