// Package arxivid derives lookup keys and links from raw arXiv listing identifiers.
package arxivid

import (
	"regexp"
	"strings"
)

const (
	// RegistryPrefix is the DOI namespace arXiv registers its preprints under.
	RegistryPrefix = "10.48550/"
	// AbsBaseURL is where abstract pages are served.
	AbsBaseURL = "https://arxiv.org/abs"
	// Scheme is the prefix arXiv listings put in front of the identifier.
	Scheme = "arXiv:"
)

var (
	versionSuffix = regexp.MustCompile(`v\d+$`)
	doiPattern    = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
)

// RegistryID returns the DataCite DOI of a listing id, e.g.
// "arXiv:2511.01234" -> "10.48550/arXiv.2511.01234".
func RegistryID(rawID string) string {
	return RegistryPrefix + strings.ReplaceAll(rawID, ":", ".")
}

// AbsURL returns the abstract page of a listing id. Ids without the arXiv scheme are
// appended to the base as they are.
func AbsURL(rawID string) string {
	number := strings.TrimPrefix(strings.TrimSpace(rawID), Scheme)
	number = strings.TrimPrefix(number, "/")
	return AbsBaseURL + "/" + number
}

// Canonical normalises scraped identifiers to "arXiv:<number>" without a version suffix.
// Old-style identifiers ("quant-ph/0101001") keep their archive part.
func Canonical(raw string) string {
	id := strings.TrimSpace(raw)
	for _, prefix := range []string{"http://arxiv.org/abs/", "https://arxiv.org/abs/", "/abs/"} {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimPrefix(id, prefix)
			break
		}
	}
	if len(id) > len(Scheme) && strings.EqualFold(id[:len(Scheme)], Scheme) {
		id = id[len(Scheme):]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return Scheme + versionSuffix.ReplaceAllString(id, "")
}

// CleanDOI strips resolver prefixes and trailing punctuation. It returns an empty
// string when the value does not look like a DOI.
func CleanDOI(raw string) string {
	doi := strings.TrimSpace(raw)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	doi = strings.TrimRight(strings.TrimSpace(doi), ".,;")
	if !doiPattern.MatchString(doi) {
		return ""
	}
	return doi
}
