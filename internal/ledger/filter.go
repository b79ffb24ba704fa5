package ledger

import (
	"sort"
	"strings"
)

type StatusFilter string

const (
	StatusAll      StatusFilter = ""
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// Filters narrows the provider view. Zero values match everything.
type Filters struct {
	Search string       `json:"search"`
	Status StatusFilter `json:"status"`
	City   string       `json:"city"`
}

// SetSearch replaces the search term. It does not touch Status or City.
func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	s.filters.Search = term
	s.mu.Unlock()
}

// SetFilters replaces status and city. The search term is left as is.
func (s *Store) SetFilters(status StatusFilter, city string) {
	s.mu.Lock()
	s.filters.Status = status
	s.filters.City = city
	s.mu.Unlock()
}

func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// FilteredProviders applies the store's current filters to its provider list.
func (s *Store) FilteredProviders() []Provider {
	s.mu.RLock()
	list := append([]Provider(nil), s.providers...)
	f := s.filters
	s.mu.RUnlock()
	return FilterProviders(list, f)
}

// FilterProviders returns the providers matching f, newest first.
//
// The search term (trimmed, case-insensitive) must be a substring of name,
// email, city or contact name. A status filter keeps only active or inactive
// records and a non-empty city must match exactly. Ties on CreatedAt keep
// their input order. list is not modified.
func FilterProviders(list []Provider, f Filters) []Provider {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Provider, 0, len(list))
	for _, p := range list {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		switch f.Status {
		case StatusActive:
			if !p.IsActive {
				continue
			}
		case StatusInactive:
			if p.IsActive {
				continue
			}
		}
		if f.City != "" && p.City != f.City {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesTerm(p Provider, term string) bool {
	for _, field := range []string{p.Name, p.Email, p.City, p.ContactName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
