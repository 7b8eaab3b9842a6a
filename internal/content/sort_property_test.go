//go:build property

package content

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func postsFromOffsets(offsets []int) []Post {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]Post, len(offsets))
	for i, off := range offsets {
		posts[i] = Post{
			Slug:      fmt.Sprintf("post-%03d", i),
			Published: base.AddDate(0, 0, off),
		}
	}
	return posts
}

func TestSortByDateProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sorted posts are newest first", prop.ForAll(
		func(offsets []int) bool {
			posts := postsFromOffsets(offsets)
			SortByDate(posts)
			for i := 1; i < len(posts); i++ {
				if posts[i].Published.After(posts[i-1].Published) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 30)),
	))

	properties.Property("equal dates keep input order", prop.ForAll(
		func(offsets []int) bool {
			posts := postsFromOffsets(offsets)
			SortByDate(posts)
			for i := 1; i < len(posts); i++ {
				if posts[i].Published.Equal(posts[i-1].Published) && posts[i].Slug < posts[i-1].Slug {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("sorting keeps every post", prop.ForAll(
		func(offsets []int) bool {
			posts := postsFromOffsets(offsets)
			SortByDate(posts)
			seen := make(map[string]bool, len(posts))
			for _, p := range posts {
				seen[p.Slug] = true
			}
			return len(seen) == len(offsets)
		},
		gen.SliceOf(gen.IntRange(0, 30)),
	))

	properties.TestingRun(t)
}

func TestSelectRelatedProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	tagPool := []string{"go", "api", "testing", "docker"}

	properties.Property("suggestions never exceed count nor repeat", prop.ForAll(
		func(offsets []int, tagIdx []int, count int) bool {
			posts := postsFromOffsets(offsets)
			for i := range posts {
				if i < len(tagIdx) {
					posts[i].Frontmatter.Tags = []string{tagPool[tagIdx[i]%len(tagPool)]}
				}
			}
			SortByDate(posts)

			got := SelectRelated(posts, "post-000", []string{"go", "api"}, count)
			if got.Len() > count {
				return false
			}
			seen := map[string]bool{}
			for _, p := range append(got.Related, got.Recent...) {
				if p.Slug == "post-000" || seen[p.Slug] {
					return false
				}
				seen[p.Slug] = true
			}
			for _, p := range got.Related {
				if !p.HasTag("go") && !p.HasTag("api") {
					return false
				}
			}
			expected := len(posts) - 1
			if len(posts) == 0 {
				expected = 0
			}
			if expected > count {
				expected = count
			}
			return got.Len() == expected
		},
		gen.SliceOf(gen.IntRange(0, 30)),
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}
