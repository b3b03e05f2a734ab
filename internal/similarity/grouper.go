package similarity

import (
	"sort"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
)

// DefaultThreshold is the minimum cosine similarity for two photos to be
// considered near-duplicates.
const DefaultThreshold = 0.7

// Group partitions photos into similarity groups and a residual unique set.
//
// The algorithm is greedy single-linkage over the input order: each
// unprocessed photo becomes the anchor of a candidate group, and every later
// unprocessed photo whose similarity to the anchor reaches the threshold
// joins it. Candidates are compared against the anchor only, never against
// other members, so a group can contain members that are pairwise below the
// threshold relative to each other. That chaining behavior is intentional
// and callers depend on it; do not replace this with transitive clustering.
//
// Photos without an embedding are excluded from comparison and always land
// in UniquePhotos. O(n²) comparisons, which is fine at session scale.
func Group(photos []catalog.Photo, threshold float64) catalog.GroupResult {
	var embedded []catalog.Photo
	var unique []catalog.Photo

	for _, p := range photos {
		if p.HasEmbedding() {
			embedded = append(embedded, p)
		} else {
			unique = append(unique, p)
		}
	}

	var groups []catalog.PhotoGroup
	processed := make([]bool, len(embedded))

	for i := range embedded {
		if processed[i] {
			continue
		}

		anchor := embedded[i]
		members := []catalog.Photo{anchor}
		minSim := 1.0

		for j := i + 1; j < len(embedded); j++ {
			if processed[j] {
				continue
			}
			sim := CosineSimilarity(anchor.Embedding, embedded[j].Embedding)
			if sim >= threshold {
				members = append(members, embedded[j])
				processed[j] = true
				if sim < minSim {
					minSim = sim
				}
			}
		}
		processed[i] = true

		if len(members) < 2 {
			unique = append(unique, anchor)
			continue
		}

		// Best photo first; stable so equal qualities keep input order.
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].Quality > members[b].Quality
		})

		keeper := members[0]
		groups = append(groups, catalog.PhotoGroup{
			ID:         "group-" + keeper.ID,
			Photos:     members,
			Similarity: minSim,
			Date:       keeper.CaptureDate,
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date.After(groups[b].Date)
	})
	sort.SliceStable(unique, func(a, b int) bool {
		return unique[a].CaptureDate.After(unique[b].CaptureDate)
	})

	return catalog.GroupResult{Groups: groups, UniquePhotos: unique}
}
