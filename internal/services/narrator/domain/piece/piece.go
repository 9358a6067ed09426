// Package piece defines the scoped unit of rendered context text and the
// codec for piece identifiers.
package piece

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
)

var (
	// ErrEmptyID marks a blank identifier handed to ParseID.
	ErrEmptyID = errors.New("piece id is empty")
	// ErrEmptySlug marks an identifier or piece without a slug.
	ErrEmptySlug = errors.New("piece slug is empty")
	// ErrMissingScope marks an identifier without a scope segment.
	ErrMissingScope = errors.New("piece id is missing a scope")
	// ErrEmptyVersion marks an identifier with a trailing @ and no version.
	ErrEmptyVersion = errors.New("piece version is empty")
)

// Piece is a scoped, already-rendered unit of context text with a known
// token cost. Version is optional and empty for unversioned content.
type Piece struct {
	Scope   scope.Scope
	Slug    string
	Version string
	Text    string
	Tokens  int
}

// ID returns the canonical identity of the piece, scope:slug[@version].
func (p Piece) ID() string {
	return FormatID(p.Scope, p.Slug, p.Version)
}

// ID is a parsed piece identifier.
type ID struct {
	Scope   scope.Scope
	Slug    string
	Version string
}

// String renders the identifier back to its canonical form.
func (id ID) String() string {
	return FormatID(id.Scope, id.Slug, id.Version)
}

// FormatID renders scope:slug, appending @version when version is set.
func FormatID(s scope.Scope, slug, version string) string {
	if version == "" {
		return fmt.Sprintf("%s:%s", s, slug)
	}
	return fmt.Sprintf("%s:%s@%s", s, slug, version)
}

// ParseID is the inverse of FormatID. The version is split off at the first
// @, then the scope at the first colon; everything after that colon,
// further colons included, is the slug.
func ParseID(raw string) (ID, error) {
	if strings.TrimSpace(raw) == "" {
		return ID{}, ErrEmptyID
	}

	rest, version, hasVersion := strings.Cut(raw, "@")
	if hasVersion && version == "" {
		return ID{}, fmt.Errorf("parse %q: %w", raw, ErrEmptyVersion)
	}

	scopePart, slug, hasScope := strings.Cut(rest, ":")
	if !hasScope {
		return ID{}, fmt.Errorf("parse %q: %w", raw, ErrMissingScope)
	}
	if slug == "" {
		return ID{}, fmt.Errorf("parse %q: %w", raw, ErrEmptySlug)
	}

	s, err := scope.Parse(scopePart)
	if err != nil {
		return ID{}, fmt.Errorf("parse %q: %w", raw, err)
	}

	return ID{Scope: s, Slug: slug, Version: version}, nil
}
