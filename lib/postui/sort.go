// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package postui

import (
	"sort"

	"github.com/quill-blog/quill/lib/api"
)

// SortKey selects the ordering of the post list projection.
type SortKey string

const (
	// SortDefault preserves the server's order, which the backend
	// produces as a weight-descending priority ordering.
	SortDefault SortKey = "default"
	// SortNewest orders by creation time, most recent first.
	SortNewest SortKey = "newest"
	// SortOldest orders by creation time, oldest first.
	SortOldest SortKey = "oldest"
)

// Next cycles default → newest → oldest → default.
func (key SortKey) Next() SortKey {
	switch key {
	case SortDefault:
		return SortNewest
	case SortNewest:
		return SortOldest
	default:
		return SortDefault
	}
}

// SortPosts returns a new slice ordered by the sort key. The input is
// never mutated. The sort is stable: posts with equal creation
// timestamps keep their original relative order, and SortDefault is a
// plain copy.
func SortPosts(posts []api.Post, key SortKey) []api.Post {
	ordered := make([]api.Post, len(posts))
	copy(ordered, posts)

	switch key {
	case SortNewest:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		})
	}
	return ordered
}
