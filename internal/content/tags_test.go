package content

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taggedPost(slug, date string, tags ...string) Post {
	published, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return Post{
		Slug:        slug,
		Frontmatter: Frontmatter{Title: slug, Date: date, Tags: tags},
		Published:   published,
	}
}

func TestListTags(t *testing.T) {
	posts := []Post{
		taggedPost("a", "2024-01-01", "API", "Testing"),
		taggedPost("b", "2024-01-02", "api"),
		taggedPost("c", "2024-01-03", "testing", " go "),
		taggedPost("d", "2024-01-04"),
	}

	tags := ListTags(posts)

	require.Len(t, tags, 3)
	lowered := make([]string, len(tags))
	for i, tag := range tags {
		lowered[i] = strings.ToLower(tag)
	}
	assert.Equal(t, []string{"api", "go", "testing"}, lowered)
	assert.Equal(t, "API", tags[0], "first seen casing is kept")
}

func TestListTagsCollapsesCase(t *testing.T) {
	posts := []Post{taggedPost("a", "2024-01-01", "API", "api", "Testing")}

	assert.Len(t, ListTags(posts), 2)
	assert.Empty(t, ListTags(nil))
}

func TestFilterByTag(t *testing.T) {
	posts := []Post{
		taggedPost("a", "2024-01-03", "Go"),
		taggedPost("b", "2024-01-02", "Rust"),
		taggedPost("c", "2024-01-01", "go", "rust"),
	}

	assert.Equal(t, []string{"a", "c"}, slugs(FilterByTag(posts, "GO")))
	assert.Equal(t, []string{"b", "c"}, slugs(FilterByTag(posts, "rust")))
	assert.Empty(t, FilterByTag(posts, "python"))
	assert.Len(t, FilterByTag(posts, " "), 3)
}

func TestPopularTags(t *testing.T) {
	posts := []Post{
		taggedPost("a", "2024-01-03", "Go", "API"),
		taggedPost("b", "2024-01-02", "go", "Testing", "GO"),
		taggedPost("c", "2024-01-01", "api", "go", "Docker"),
	}

	popular := PopularTags(posts, nil, 3)
	assert.Equal(t, []TagCount{{"Go", 3}, {"API", 2}, {"Docker", 1}}, popular)

	popular = PopularTags(posts, []string{"GO"}, 10)
	assert.Equal(t, []TagCount{{"API", 2}, {"Docker", 1}, {"Testing", 1}}, popular)

	assert.Nil(t, PopularTags(posts, nil, 0))
}

func TestSelectRelated(t *testing.T) {
	// Newest first, as ListPosts returns them.
	posts := []Post{
		taggedPost("testing-only", "2024-03-01", "testing"),
		taggedPost("api-only", "2024-02-01", "api"),
		taggedPost("current", "2024-01-15", "api", "testing"),
		taggedPost("api-and-testing", "2024-01-01", "API", "Testing"),
		taggedPost("untagged", "2023-12-01"),
		taggedPost("unrelated", "2023-11-01", "cooking"),
	}

	t.Run("more shared tags rank first then newest", func(t *testing.T) {
		got := SelectRelated(posts, "current", []string{"api", "testing"}, 2)

		assert.Equal(t, []string{"api-and-testing", "testing-only"}, slugs(got.Related))
		assert.Empty(t, got.Recent)
	})

	t.Run("backfills with recent posts", func(t *testing.T) {
		got := SelectRelated(posts, "current", []string{"api", "testing"}, 5)

		assert.Equal(t, []string{"api-and-testing", "testing-only", "api-only"}, slugs(got.Related))
		assert.Equal(t, []string{"untagged", "unrelated"}, slugs(got.Recent))
		assert.Equal(t, 5, got.Len())
	})

	t.Run("no tags means only recent", func(t *testing.T) {
		got := SelectRelated(posts, "current", nil, 2)

		assert.Empty(t, got.Related)
		assert.Equal(t, []string{"testing-only", "api-only"}, slugs(got.Recent))
	})

	t.Run("never returns the current post", func(t *testing.T) {
		got := SelectRelated(posts, "current", []string{"api"}, 10)

		for _, p := range append(got.Related, got.Recent...) {
			assert.NotEqual(t, "current", p.Slug)
		}
		assert.Equal(t, 5, got.Len())
	})

	t.Run("zero count", func(t *testing.T) {
		assert.Equal(t, 0, SelectRelated(posts, "current", []string{"api"}, 0).Len())
	})
}

func TestRelatedPostsFromResolver(t *testing.T) {
	r, _ := newTestResolver(t, testTree())

	got := r.RelatedPosts(context.Background(), "gamma", []string{"go"}, 2, "en")

	assert.Equal(t, []string{"alpha"}, slugs(got.Related))
	assert.Equal(t, []string{"beta"}, slugs(got.Recent))
}
