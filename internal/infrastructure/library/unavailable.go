// Package library implements reference-library clients backed by Zotero.
package library

import (
	"context"
	"errors"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// ErrLibraryDisabled explains lookups against the Unavailable client.
var ErrLibraryDisabled = errors.New("reference library is not available")

// Unavailable answers every lookup with LookupUnavailable.
type Unavailable struct {
	Reason error
}

var _ ports.LibraryClient = Unavailable{}

// Lookup never matches.
func (u Unavailable) Lookup(context.Context, string, string) domain.LookupResult {
	reason := u.Reason
	if reason == nil {
		reason = ErrLibraryDisabled
	}
	return domain.Unavailable(reason)
}
