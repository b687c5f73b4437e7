package domain

import "time"

// ExternalRef is an identifier assigned to a record by a third party after posting,
// typically a journal DOI.
type ExternalRef struct {
	Label   string
	Locator string
}

// Record is a single listing fetched for one category and calendar day.
type Record struct {
	ID       string
	Title    string
	Authors  []string
	Abstract string
	External *ExternalRef
}

// HasExternal reports whether the record carries a usable external reference.
func (r Record) HasExternal() bool {
	return r.External != nil && (r.External.Label != "" || r.External.Locator != "")
}

// Enrichment is the optional AI output attached to a rendered record.
type Enrichment struct {
	Provider        string
	Summary         string
	TranslatedTitle string
}

// Empty reports whether the provider returned nothing worth rendering.
func (e Enrichment) Empty() bool {
	return e.Summary == ""
}

// Category is a supported subject area together with the arguments fetch strategies need.
type Category struct {
	Name string
	// Archive is the listing archive, e.g. "quant-ph" or "physics.chem-ph".
	Archive string
	// Group and SearchArchive select the category in the advanced search form.
	Group         string
	SearchArchive string
}

// Day identifies one report: a category and a calendar date.
type Day struct {
	Category Category
	Date     time.Time
}

// DateString renders the date part as YYYY-MM-DD.
func (d Day) DateString() string {
	return d.Date.Format("2006-01-02")
}

// String identifies the day in logs.
func (d Day) String() string {
	return d.Category.Name + "/" + d.DateString()
}
