// Package portfolio provides the data behind the resume and projects pages:
// a structured resume per language and the list of showcased projects.
package portfolio

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/logging"
)

//go:embed resume/*.yaml
var embeddedResume embed.FS

// Resume is the structured content of the resume page.
type Resume struct {
	Language       i18n.Language   `yaml:"-" json:"language"`
	Profile        Profile         `yaml:"profile" json:"profile"`
	Summary        string          `yaml:"summary" json:"summary"`
	Experience     []Experience    `yaml:"experience" json:"experience"`
	Education      []Education     `yaml:"education" json:"education"`
	Certifications []Certification `yaml:"certifications" json:"certifications"`
	Skills         []SkillGroup    `yaml:"skills" json:"skills"`
	Languages      []LanguageSkill `yaml:"languages" json:"languages"`
	Projects       []ResumeProject `yaml:"projects" json:"projects"`
}

type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Headline string `yaml:"headline" json:"headline"`
	Location string `yaml:"location" json:"location"`
	Email    string `yaml:"email" json:"email"`
	Phone    string `yaml:"phone" json:"phone"`
	Website  string `yaml:"website" json:"website"`
	GitHub   string `yaml:"github" json:"github"`
	LinkedIn string `yaml:"linkedin" json:"linkedin"`
}

// Experience is one position. An empty End means the position is current.
type Experience struct {
	Company    string   `yaml:"company" json:"company"`
	Title      string   `yaml:"title" json:"title"`
	Start      string   `yaml:"start" json:"start"`
	End        string   `yaml:"end" json:"end"`
	Location   string   `yaml:"location" json:"location"`
	Highlights []string `yaml:"highlights" json:"highlights"`
}

type Education struct {
	Institution string   `yaml:"institution" json:"institution"`
	Degree      string   `yaml:"degree" json:"degree"`
	Year        string   `yaml:"year" json:"year"`
	Focus       []string `yaml:"focus" json:"focus"`
}

type Certification struct {
	Name   string   `yaml:"name" json:"name"`
	Status string   `yaml:"status" json:"status"`
	Notes  []string `yaml:"notes" json:"notes"`
}

type SkillGroup struct {
	Name  string   `yaml:"name" json:"name"`
	Items []string `yaml:"items" json:"items"`
}

type LanguageSkill struct {
	Language string `yaml:"language" json:"language"`
	Level    string `yaml:"level" json:"level"`
}

type ResumeProject struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Stack       string `yaml:"stack" json:"stack"`
}

// ResumeStore loads resumes from <dir>/<lang>.yaml in the content tree,
// falling back to the copy built into the binary. Like the content resolver
// it reads on every call.
type ResumeStore struct {
	fsys   fs.FS
	dir    string
	langs  i18n.Set
	logger logging.Logger
}

// NewResumeStore creates a store reading from dir inside fsys.
func NewResumeStore(fsys fs.FS, dir string, langs i18n.Set, logger logging.Logger) *ResumeStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ResumeStore{fsys: fsys, dir: path.Clean(dir), langs: langs, logger: logger.WithComponent("resume")}
}

// Resume returns the resume in lang. The content tree wins over the built-in
// copy; a language with neither falls back to the default language. A file
// that fails to parse is logged and skipped.
func (s *ResumeStore) Resume(ctx context.Context, lang i18n.Language) (*Resume, error) {
	lang = s.langs.OrDefault(lang)

	candidates := []i18n.Language{lang}
	if lang != s.langs.Default {
		candidates = append(candidates, s.langs.Default)
	}

	for _, candidate := range candidates {
		sources := []struct {
			fsys fs.FS
			file string
		}{
			{s.fsys, path.Join(s.dir, string(candidate)+".yaml")},
			{embeddedResume, path.Join("resume", string(candidate)+".yaml")},
		}
		for _, src := range sources {
			if src.fsys == nil {
				continue
			}
			data, err := fs.ReadFile(src.fsys, src.file)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					s.logger.Warn(ctx, err, "Failed to read resume", "file", src.file)
				}
				continue
			}

			resume, err := ParseResume(data)
			if err != nil {
				s.logger.Warn(ctx, err, "Skipping invalid resume", "file", src.file)
				continue
			}
			resume.Language = candidate
			return resume, nil
		}
	}

	return nil, errors.NewNotFoundError(errors.ErrCodeResumeNotFound, "no resume for language "+string(lang))
}

// ParseResume decodes a resume document. Unknown keys are rejected so typos
// in hand-written files surface instead of silently dropping a section.
func ParseResume(data []byte) (*Resume, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var resume Resume
	if err := dec.Decode(&resume); err != nil {
		return nil, errors.WrapValidation(err, errors.ErrCodeResumeInvalid, "resume could not be decoded")
	}
	if strings.TrimSpace(resume.Profile.Name) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeResumeInvalid, "profile.name is required")
	}
	return &resume, nil
}

// SampleResume returns the built-in resume source for lang, used by
// "folio init" to seed the content tree.
func SampleResume(lang i18n.Language) ([]byte, bool) {
	data, err := embeddedResume.ReadFile(path.Join("resume", string(lang)+".yaml"))
	if err != nil {
		return nil, false
	}
	return data, true
}
