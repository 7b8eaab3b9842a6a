package i18n

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Dictionary is the full set of UI strings for one language.
type Dictionary struct {
	Language  Language          `yaml:"-"`
	Name      string            `yaml:"name"`
	Languages map[string]string `yaml:"languages"`

	Nav struct {
		Home     string `yaml:"home"`
		About    string `yaml:"about"`
		Projects string `yaml:"projects"`
		Blog     string `yaml:"blog"`
		Resume   string `yaml:"resume"`
		Contact  string `yaml:"contact"`
	} `yaml:"nav"`

	Common struct {
		ReadMore       string   `yaml:"read_more"`
		SwitchLanguage string   `yaml:"switch_language"`
		Copyright      string   `yaml:"copyright"`
		DateFormat     string   `yaml:"date_format"`
		Months         []string `yaml:"months"`
		Errors         struct {
			NotFound      string `yaml:"not_found"`
			NotFoundText  string `yaml:"not_found_text"`
			Generic       string `yaml:"generic"`
			BlogLoadError string `yaml:"blog_load_error"`
			TryAgainLater string `yaml:"try_again_later"`
		} `yaml:"errors"`
		CTA struct {
			Title         string `yaml:"title"`
			Subtitle      string `yaml:"subtitle"`
			ContactButton string `yaml:"contact_button"`
			ResumeButton  string `yaml:"resume_button"`
		} `yaml:"cta"`
	} `yaml:"common"`

	Blog struct {
		MetaTitle              string `yaml:"meta_title"`
		MetaDescription        string `yaml:"meta_description"`
		LatestArticles         string `yaml:"latest_articles"`
		Subtitle               string `yaml:"subtitle"`
		ViewAll                string `yaml:"view_all"`
		TaggedWith             string `yaml:"tagged_with"`
		NoPostsWithTag         string `yaml:"no_posts_with_tag"`
		NoPostsAvailable       string `yaml:"no_posts_available"`
		MoreArticles           string `yaml:"more_articles"`
		OtherLanguageAvailable string `yaml:"other_language_available"`
		ReadInLanguage         string `yaml:"read_in_language"`
		AllTags                string `yaml:"all_tags"`
		TableOfContents        string `yaml:"table_of_contents"`
		RelatedPosts           string `yaml:"related_posts"`
		RecentPosts            string `yaml:"recent_posts"`
		PopularTopics          string `yaml:"popular_topics"`
		Published              string `yaml:"published"`
		BackToBlog             string `yaml:"back_to_blog"`
	} `yaml:"blog"`

	Pages struct {
		Home     Page `yaml:"home"`
		About    Page `yaml:"about"`
		Resume   Page `yaml:"resume"`
		Projects Page `yaml:"projects"`
		Contact  Page `yaml:"contact"`
	} `yaml:"pages"`

	Resume struct {
		Profile        string `yaml:"profile"`
		Experience     string `yaml:"experience"`
		Education      string `yaml:"education"`
		Certifications string `yaml:"certifications"`
		Skills         string `yaml:"skills"`
		Languages      string `yaml:"languages"`
		Projects       string `yaml:"projects"`
		Present        string `yaml:"present"`
		Unavailable    string `yaml:"unavailable"`
	} `yaml:"resume"`

	Projects struct {
		Stars       string `yaml:"stars"`
		Updated     string `yaml:"updated"`
		Empty       string `yaml:"empty"`
		FetchFailed string `yaml:"fetch_failed"`
	} `yaml:"projects"`

	Legal struct {
		Privacy     string `yaml:"privacy"`
		Terms       string `yaml:"terms"`
		Impressum   string `yaml:"impressum"`
		LastUpdated string `yaml:"last_updated"`
	} `yaml:"legal"`
}

// Page is the heading and intro text of a static page.
type Page struct {
	Title string `yaml:"title"`
	Intro string `yaml:"intro"`
}

// LanguageName returns the display name of lang in this dictionary's language.
func (d *Dictionary) LanguageName(lang Language) string {
	if name, ok := d.Languages[string(lang)]; ok {
		return name
	}
	return strings.ToUpper(string(lang))
}

// FormatDate renders t with the dictionary's date format and month names.
func (d *Dictionary) FormatDate(t time.Time) string {
	month := t.Month().String()
	if len(d.Common.Months) == 12 {
		month = d.Common.Months[t.Month()-1]
	}
	layout := d.Common.DateFormat
	if layout == "" {
		layout = "{{month}} {{day}}, {{year}}"
	}
	return Format(layout,
		"day", strconv.Itoa(t.Day()),
		"month", month,
		"year", strconv.Itoa(t.Year()),
	)
}

// Format replaces {{key}} placeholders in s with the given values.
func Format(s string, kv ...string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		s = strings.ReplaceAll(s, "{{"+kv[i]+"}}", kv[i+1])
	}
	return s
}

// Catalog maps languages to dictionaries. It is built once at startup and is
// safe for concurrent reads.
type Catalog struct {
	set  Set
	dict map[Language]*Dictionary
}

// LoadCatalog decodes the embedded dictionary for every supported language.
// The default language must have a dictionary; other languages without one
// fall back to the default at lookup time.
func LoadCatalog(set Set) (*Catalog, error) {
	c := &Catalog{set: set, dict: make(map[Language]*Dictionary, len(set.Supported))}

	for _, lang := range set.Supported {
		data, err := localeFS.ReadFile(path.Join("locales", string(lang)+".yaml"))
		if err != nil {
			if lang == set.Default {
				return nil, fmt.Errorf("no dictionary for default language %q: %w", lang, err)
			}
			continue
		}

		d := &Dictionary{}
		if err := yaml.UnmarshalStrict(data, d); err != nil {
			return nil, fmt.Errorf("failed to decode %s dictionary: %w", lang, err)
		}
		d.Language = lang
		c.dict[lang] = d
	}

	return c, nil
}

// MustLoadCatalog is LoadCatalog for the built-in language set, panicking on
// failure. The dictionaries are embedded, so a failure is a build defect.
func MustLoadCatalog(set Set) *Catalog {
	c, err := LoadCatalog(set)
	if err != nil {
		panic(err)
	}
	return c
}

// Dictionary returns the strings for lang, falling back to the default language.
func (c *Catalog) Dictionary(lang Language) *Dictionary {
	if d, ok := c.dict[lang]; ok {
		return d
	}
	return c.dict[c.set.Default]
}

// Languages returns the language set the catalog was built for.
func (c *Catalog) Languages() Set {
	return c.set
}
