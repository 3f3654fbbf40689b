package usecase

import (
	"fmt"

	"sangh-connect/services/post/internal/entity"
)

const (
	postKeyPrefix = "posts:single:"
	listKeyPrefix = "posts:list:"
)

func postCacheKey(postID string) string {
	return postKeyPrefix + postID
}

// listCacheKey is posts:list:<scope>:page:<p>:limit:<l>, where scope is all,
// sangh:<id> or author:<id>.
func listCacheKey(filter entity.PostFilter) string {
	return fmt.Sprintf("%s%s:page:%d:limit:%d", listKeyPrefix, listScope(filter), filter.Page, filter.Limit)
}

func listScope(filter entity.PostFilter) string {
	switch {
	case filter.SanghID != "" && filter.AuthorID != "":
		return fmt.Sprintf("sangh:%s:author:%s", filter.SanghID, filter.AuthorID)
	case filter.SanghID != "":
		return "sangh:" + filter.SanghID
	case filter.AuthorID != "":
		return "author:" + filter.AuthorID
	default:
		return "all"
	}
}

// listPatternsFor returns the listing patterns that may contain post.
func listPatternsFor(post *entity.Post) []string {
	patterns := []string{
		listKeyPrefix + "all:*",
		listKeyPrefix + "author:" + post.AuthorID + ":*",
	}
	if post.SanghID != "" {
		patterns = append(patterns, listKeyPrefix+"sangh:"+post.SanghID+":*")
	}
	return patterns
}
