package domain

// LibraryEntry is an item already archived in the reference library.
type LibraryEntry struct {
	Key      string
	Title    string
	ItemType string
	DOI      string
}

// LookupStatus distinguishes the three outcomes of a library query.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupUnavailable:
		return "unavailable"
	default:
		return "not_found"
	}
}

// LookupResult is the outcome of one library query. Err is set only for LookupUnavailable.
type LookupResult struct {
	Status  LookupStatus
	Entries []LibraryEntry
	Err     error
}

// Found wraps matching entries; an empty slice yields NotFound.
func Found(entries []LibraryEntry) LookupResult {
	if len(entries) == 0 {
		return LookupResult{Status: LookupNotFound}
	}
	return LookupResult{Status: LookupFound, Entries: entries}
}

// Unavailable records that the library could not answer.
func Unavailable(err error) LookupResult {
	return LookupResult{Status: LookupUnavailable, Err: err}
}

// LibraryMatch is the per-record verdict of the matcher.
type LibraryMatch struct {
	Matched bool
	Entries []LibraryEntry
	// Key is the lookup value that produced the match.
	Key string
}
