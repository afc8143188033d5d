package catalog

import (
	"strconv"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
)

// FindCategory returns the first category with the given slug.
func (s *Snapshot) FindCategory(slug string) (*scripture.Category, error) {
	for i := range s.Categories {
		if s.Categories[i].Slug == slug {
			return &s.Categories[i], nil
		}
	}
	return nil, errors.NewNotFound("category", slug)
}

// ScripturesByCategory returns the scriptures whose metadata category equals
// name, in store order.
func (s *Snapshot) ScripturesByCategory(name string) []*scripture.Scripture {
	out := []*scripture.Scripture{}
	for _, sc := range s.Scriptures {
		if sc.Metadata.Category == name {
			out = append(out, sc)
		}
	}
	return out
}

// FindScripture returns the first scripture with the given slug.
func (s *Snapshot) FindScripture(slug string) (*scripture.Scripture, error) {
	for _, sc := range s.Scriptures {
		if sc.Metadata.Slug == slug {
			return sc, nil
		}
	}
	return nil, errors.NewNotFound("scripture", slug)
}

// VerseRef is a verse located by FindVerse.
type VerseRef struct {
	Scripture *scripture.Scripture
	scripture.Visit
}

// FindVerse returns the first verse numbered n in the scripture's walk order.
// Verse numbers restart in every section, so later verses with the same
// number are not reachable by this lookup.
func (s *Snapshot) FindVerse(slug string, n int) (*VerseRef, error) {
	sc, err := s.FindScripture(slug)
	if err != nil {
		return nil, err
	}
	visit, ok, err := sc.FindVerse(n)
	if err != nil {
		return nil, errors.NewDataUnavailable(slug, err)
	}
	if !ok {
		return nil, errors.NewNotFound("verse", slug+"/"+strconv.Itoa(n))
	}
	return &VerseRef{Scripture: sc, Visit: visit}, nil
}
