// Package detect decides which freshly scraped listings are genuinely new
// for a keyword. It is pure computation over in-memory structures: no I/O,
// no error paths. Persistence belongs to the seen store and delivery to the
// monitor loop.
package detect

import (
	"github.com/yhirano/auctionwatch/internal/core"
	"github.com/yhirano/auctionwatch/internal/seen"
)

type Mode int

const (
	// Bootstrap is the first pass for a keyword: the current listings are
	// recorded as pre-existing history and nothing is notified. Without
	// this rule the first run of every keyword would flood the channel
	// with items that existed before monitoring began.
	Bootstrap Mode = iota
	// Incremental covers every later pass: unseen listings become notify
	// candidates.
	Incremental
)

func (m Mode) String() string {
	if m == Bootstrap {
		return "bootstrap"
	}
	return "incremental"
}

// Result describes one detection pass over a keyword's fresh listings.
type Result struct {
	Mode Mode
	// Candidates are the listings to notify, in the order the adapter
	// returned them. The caller marks each candidate seen immediately
	// after its notify attempt, success or failure alike: dedup is by
	// detection, not by delivery, so a persistently failing channel cannot
	// cause a repeat-notification storm.
	Candidates []core.Item
	// Recorded counts ids inserted into the set during bootstrap.
	Recorded int
}

// Process classifies fresh against the keyword's seen set.
//
// Bootstrap triggers iff the set is empty at call time. In that mode every
// listing with a resolvable id is recorded directly into the set. In
// incremental mode a listing is a candidate iff its id is non-empty, not in
// the set, and its price is at least minPrice (>=, so a listing priced
// exactly at the floor qualifies). Listings below the floor are not
// recorded: if the same id is later re-listed at a qualifying price it will
// still notify.
func Process(fresh []core.Item, set seen.Set, minPrice int) Result {
	if set.Len() == 0 {
		res := Result{Mode: Bootstrap}
		for _, item := range fresh {
			if set.Add(item.ID) {
				res.Recorded++
			}
		}
		return res
	}

	res := Result{Mode: Incremental}
	for _, item := range fresh {
		if item.ID == "" || set.Has(item.ID) {
			continue
		}
		if item.Price < minPrice {
			continue
		}
		res.Candidates = append(res.Candidates, item)
	}
	return res
}
