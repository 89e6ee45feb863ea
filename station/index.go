package station

import (
	"strings"
)

// Index stores the station dataset in memory for fast lookups. The ordered
// slice preserves the dataset's original ordering, which reflects station
// importance; search tiers rely on it so that common queries surface the
// principal station first. An Index is immutable once built.
type Index struct {
	Ordered []Station
	ByCode  map[string]int // telecode -> position in Ordered
}

// NewIndex builds an index over the given stations, first occurrence of a
// telecode winning on duplicates.
func NewIndex(stations []Station) *Index {
	idx := &Index{
		Ordered: stations,
		ByCode:  make(map[string]int, len(stations)),
	}
	for i, s := range stations {
		if _, ok := idx.ByCode[s.Code]; !ok {
			idx.ByCode[s.Code] = i
		}
	}
	return idx
}

// Len reports the number of indexed stations.
func (idx *Index) Len() int { return len(idx.Ordered) }

// ResolveCode looks a station up by exact telecode, case-insensitively.
func (idx *Index) ResolveCode(token string) (Station, bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if len(token) != 3 {
		return Station{}, false
	}
	if i, ok := idx.ByCode[token]; ok {
		return idx.Ordered[i], true
	}
	return Station{}, false
}

// Search performs tiered fuzzy matching: exact name, name prefix, exact
// pinyin or short pinyin, then substring over name and both pinyin forms.
// Matches within a tier keep dataset order. Accumulation stops once limit
// results are gathered; results are deduplicated by telecode across tiers.
func (idx *Index) Search(query string, limit int) []Station {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}
	lower := strings.ToLower(query)

	tiers := []func(s Station) bool{
		func(s Station) bool { return s.Name == query },
		func(s Station) bool { return strings.HasPrefix(s.Name, query) },
		func(s Station) bool { return s.Pinyin == lower || s.PyShort == lower },
		func(s Station) bool {
			return strings.Contains(s.Name, query) ||
				strings.Contains(s.Pinyin, lower) ||
				strings.Contains(s.PyShort, lower)
		},
	}

	out := make([]Station, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, match := range tiers {
		for _, s := range idx.Ordered {
			if len(out) >= limit {
				return out
			}
			if _, dup := seen[s.Code]; dup {
				continue
			}
			if match(s) {
				seen[s.Code] = struct{}{}
				out = append(out, s)
			}
		}
	}
	return out
}

// Resolve turns a user-supplied token (telecode or fuzzy name) into a
// Station: telecode fast path first, then the first search hit.
func (idx *Index) Resolve(token string) (Station, bool) {
	if s, ok := idx.ResolveCode(token); ok {
		return s, true
	}
	if hits := idx.Search(token, 1); len(hits) > 0 {
		return hits[0], true
	}
	return Station{}, false
}
