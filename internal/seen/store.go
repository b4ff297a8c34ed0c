// Package seen persists the per-keyword sets of item ids that have already
// been evaluated for notification. The bootstrap rule in the detection
// engine depends on this state: a keyword with no recorded history gets its
// current listings registered silently instead of producing a notification
// storm for items that predate monitoring.
package seen

// Store owns the load/save lifecycle of the seen-item state for one source.
type Store interface {
	// Keyword returns the id set for kw, creating an empty one on first
	// access. Repeated calls return the same Set instance for the life of
	// the process, so mutations are visible without another lookup.
	Keyword(kw string) Set
	// Save writes the full mapping durably. Implementations must guarantee
	// that a crash mid-save leaves either the old or the new complete state
	// behind, never a partial write.
	Save() error
	Close() error
}
