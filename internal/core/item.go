package core

// Item is the normalized representation of a scraped marketplace listing.
// An Item with an empty ID can never be tracked for dedup or notified; the
// detection engine drops such listings from the candidate set.
type Item struct {
	ID    string
	Title string
	Price int // yen; 0 when the listing price could not be resolved
	URL   string
}
