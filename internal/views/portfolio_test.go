package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/portfolio"
)

func TestProjects(t *testing.T) {
	page := testPage(i18n.German, "/de/projects")
	projects := []portfolio.Project{{
		Name:        "folio",
		Description: "Portfolio <server>",
		URL:         "https://github.com/example/folio",
		Stars:       42,
		Updated:     time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		Language:    "Go",
		Topics:      []string{"showcase", "go"},
	}}

	out := render(t, Projects(page, projects, false))

	assert.Contains(t, out, `<a href="https://github.com/example/folio" rel="noopener noreferrer">folio</a>`)
	assert.Contains(t, out, "Portfolio &lt;server&gt;")
	assert.Contains(t, out, "Sterne: 42")
	assert.Contains(t, out, "Aktualisiert am 2. Mai 2025")
	assert.Contains(t, out, "#showcase")
	assert.NotContains(t, out, page.Dict.Projects.Empty)

	t.Run("empty", func(t *testing.T) {
		out := render(t, Projects(page, nil, false))
		assert.Contains(t, out, page.Dict.Projects.Empty)
	})

	t.Run("failed", func(t *testing.T) {
		out := render(t, Projects(page, nil, true))
		assert.Contains(t, out, page.Dict.Projects.FetchFailed)
		assert.NotContains(t, out, "project-grid")
	})
}

func TestResume(t *testing.T) {
	page := testPage(i18n.English, "/en/resume")
	resume := &portfolio.Resume{
		Profile: portfolio.Profile{Name: "Jane Doe", Email: "jane@example.com", GitHub: "https://github.com/jane"},
		Summary: "Builds systems.",
		Experience: []portfolio.Experience{
			{Company: "Acme", Title: "Engineer", Start: "2020", Highlights: []string{"Shipped <things>"}},
			{Company: "Initech", Title: "Intern", Start: "2018", End: "2019"},
		},
		Education:      []portfolio.Education{{Institution: "Uni", Degree: "BSc", Year: "2017"}},
		Certifications: []portfolio.Certification{{Name: "AZ-900", Status: "planned"}},
		Skills:         []portfolio.SkillGroup{{Name: "Backend", Items: []string{"Go", "SQL"}}},
		Languages:      []portfolio.LanguageSkill{{Language: "German", Level: "B2"}},
		Projects:       []portfolio.ResumeProject{{Name: "folio", Description: "This site", Stack: "Go"}},
	}

	out := render(t, Resume(page, resume))

	assert.Contains(t, out, "<h1>Jane Doe</h1>")
	assert.Contains(t, out, `href="mailto:jane@example.com"`)
	assert.Contains(t, out, "Engineer @ Acme")
	assert.Contains(t, out, "2020 - Present")
	assert.Contains(t, out, "2018 - 2019")
	assert.Contains(t, out, "Shipped &lt;things&gt;")
	assert.Contains(t, out, "BSc (2017)")
	assert.Contains(t, out, "AZ-900 (planned)")
	assert.Contains(t, out, "Go, SQL")
	assert.Contains(t, out, "German: B2")
	assert.Contains(t, out, "<h3>folio</h3>")

	t.Run("unavailable", func(t *testing.T) {
		out := render(t, Resume(page, nil))
		assert.Contains(t, out, page.Dict.Resume.Unavailable)
	})
}
