package dedup

import (
	"sort"
	"time"

	"github.com/diretoriaja/monitor/internal/collector"
)

// Dedupe folds candidates by canonical URL. On collision the record with
// the longer full text wins; ties keep the earliest-seen record. The
// first-seen order of surviving keys is preserved.
func Dedupe(items []collector.Item) []collector.Item {
	byKey := make(map[string]int, len(items))
	var out []collector.Item

	for _, item := range items {
		key := CanonicalURL(item.URL)
		if key == "" {
			continue
		}
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, item)
			continue
		}
		if len(item.FullText) > len(out[idx].FullText) {
			out[idx] = item
		}
	}
	return out
}

// SelectLatestUnique picks up to limit records for region-scoped runs:
// newest first, at most one per portal, canonical duplicates skipped.
// Records without a timestamp sort last.
func SelectLatestUnique(items []collector.Item, limit int) []collector.Item {
	if limit <= 0 {
		limit = 5
	}

	sorted := make([]collector.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return publishedOrZero(sorted[i]).After(publishedOrZero(sorted[j]))
	})

	seenHosts := make(map[string]bool)
	seenKeys := make(map[string]bool)
	var out []collector.Item

	for _, item := range sorted {
		key := CanonicalURL(item.URL)
		if key == "" || seenKeys[key] {
			continue
		}
		host := Host(item.URL)
		if host == "" || seenHosts[host] {
			continue
		}
		seenKeys[key] = true
		seenHosts[host] = true
		out = append(out, item)
		if len(out) >= limit {
			return out
		}
	}

	// Fewer portals than the limit: fill the remainder allowing repeats,
	// still skipping canonical duplicates.
	for _, item := range sorted {
		if len(out) >= limit {
			break
		}
		key := CanonicalURL(item.URL)
		if key == "" || seenKeys[key] {
			continue
		}
		seenKeys[key] = true
		out = append(out, item)
	}
	return out
}

func publishedOrZero(item collector.Item) time.Time {
	if item.PublishedAt == nil {
		return time.Time{}
	}
	return *item.PublishedAt
}
