package seen

import "sort"

// Set holds the item ids already recorded for a single keyword. Membership
// only ever grows during a process's lifetime; ids are removed exclusively
// by editing or deleting the persisted state out of band.
type Set map[string]struct{}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add records id and reports whether it was newly inserted. Empty ids are
// ignored: a listing without a stable identifier cannot be deduped safely.
func (s Set) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s Set) Len() int {
	return len(s)
}

// IDs returns the members in sorted order so persisted state is stable.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
