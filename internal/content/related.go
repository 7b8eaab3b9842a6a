package content

import (
	"context"
	"sort"

	"github.com/systemlogs/folio/internal/i18n"
)

// Related holds the sidebar suggestions for a post. Related posts share at
// least one tag with it; Recent backfills with the newest remaining posts
// when fewer than the requested number are related.
type Related struct {
	Related []Post
	Recent  []Post
}

// Len returns the total number of suggested posts.
func (r Related) Len() int {
	return len(r.Related) + len(r.Recent)
}

// RelatedPosts computes suggestions for the post currentSlug among the
// posts of lang.
func (r *Resolver) RelatedPosts(ctx context.Context, currentSlug string, currentTags []string, count int, lang i18n.Language) Related {
	return SelectRelated(r.ListPosts(ctx, lang), currentSlug, currentTags, count)
}

// SelectRelated ranks posts (expected newest first) against currentTags.
// Untagged posts and the current post are never related. Candidates are
// ranked by the number of shared tags, ties broken by date, newest first.
func SelectRelated(posts []Post, currentSlug string, currentTags []string, count int) Related {
	var result Related
	if count <= 0 {
		return result
	}

	wanted := make(map[string]bool, len(currentTags))
	for _, tag := range currentTags {
		if key := tagKey(tag); key != "" {
			wanted[key] = true
		}
	}

	type scored struct {
		post  Post
		score int
	}
	var candidates []scored

	for _, p := range posts {
		if p.Slug == currentSlug || len(p.Frontmatter.Tags) == 0 {
			continue
		}

		score := 0
		matched := make(map[string]bool)
		for _, tag := range p.Frontmatter.Tags {
			key := tagKey(tag)
			if wanted[key] && !matched[key] {
				matched[key] = true
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{post: p, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].post.Published.After(candidates[j].post.Published)
	})

	selected := map[string]bool{currentSlug: true}
	for _, c := range candidates {
		if len(result.Related) == count {
			break
		}
		result.Related = append(result.Related, c.post)
		selected[c.post.Slug] = true
	}

	if len(result.Related) == count {
		return result
	}

	recent := make([]Post, 0, len(posts))
	recent = append(recent, posts...)
	SortByDate(recent)

	for _, p := range recent {
		if result.Len() == count {
			break
		}
		if selected[p.Slug] {
			continue
		}
		result.Recent = append(result.Recent, p)
		selected[p.Slug] = true
	}

	return result
}
