package content

import (
	"sort"
	"strings"
)

// TagCount is a tag with the number of posts carrying it.
type TagCount struct {
	Tag   string
	Count int
}

func tagKey(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// ListTags returns the case-insensitive union of all tags in posts, sorted
// case-insensitively. Each tag keeps the casing it was first seen with.
func ListTags(posts []Post) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, p := range posts {
		for _, tag := range p.Frontmatter.Tags {
			key := tagKey(tag)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			tags = append(tags, strings.TrimSpace(tag))
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return tagKey(tags[i]) < tagKey(tags[j])
	})

	return tags
}

// HasTag reports whether the post carries tag, ignoring case.
func (p *Post) HasTag(tag string) bool {
	key := tagKey(tag)
	for _, t := range p.Frontmatter.Tags {
		if tagKey(t) == key {
			return true
		}
	}
	return false
}

// FilterByTag returns the posts carrying tag, ignoring case. An empty tag
// returns posts unchanged.
func FilterByTag(posts []Post, tag string) []Post {
	if tagKey(tag) == "" {
		return posts
	}

	filtered := make([]Post, 0, len(posts))
	for i := range posts {
		if posts[i].HasTag(tag) {
			filtered = append(filtered, posts[i])
		}
	}
	return filtered
}

// PopularTags returns up to n tags ordered by how many posts carry them,
// then alphabetically. Tags in exclude are left out.
func PopularTags(posts []Post, exclude []string, n int) []TagCount {
	if n <= 0 {
		return nil
	}

	skip := make(map[string]bool, len(exclude))
	for _, tag := range exclude {
		skip[tagKey(tag)] = true
	}

	index := make(map[string]int)
	var counts []TagCount

	for _, p := range posts {
		counted := make(map[string]bool)
		for _, tag := range p.Frontmatter.Tags {
			key := tagKey(tag)
			if key == "" || skip[key] || counted[key] {
				continue
			}
			counted[key] = true

			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, TagCount{Tag: strings.TrimSpace(tag), Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return tagKey(counts[i].Tag) < tagKey(counts[j].Tag)
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
