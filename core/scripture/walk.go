package scripture

import (
	"fmt"
	"slices"
	"strings"

	"github.com/srikosa/srikosa/core/errors"
)

// PathSeparator joins ancestor section titles in display labels.
const PathSeparator = " • "

// Visit is one verse reached by Walk.
type Visit struct {
	Verse *Verse

	// Section is the section that directly holds the verse.
	Section *Section

	// Path lists the titles of the ancestors of Section, outermost first.
	// It is empty for verses in a top-level section.
	Path []string
}

// SectionLabel is the section context shown next to a verse: the ancestor
// path when there is one, otherwise the title of the verse's own section.
func (v Visit) SectionLabel() string {
	if len(v.Path) > 0 {
		return strings.Join(v.Path, PathSeparator)
	}
	return v.Section.Title
}

type frame struct {
	section *Section
	path    []string
	depth   int
}

// Walk visits every verse under sections depth-first. A section's own verses
// are yielded before its child sections, and declared order is kept at every
// level. Walking stops early when yield returns false.
//
// The walk uses an explicit stack. A section that appears among its own
// ancestors is reported as a *errors.ParseError instead of looping.
func Walk(sections []*Section, yield func(Visit) bool) error {
	stack := make([]frame, 0, len(sections))
	for i := len(sections) - 1; i >= 0; i-- {
		stack = append(stack, frame{section: sections[i]})
	}

	// chain holds the sections on the path from the root to the current frame.
	var chain []*Section
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.section == nil {
			continue
		}

		chain = chain[:f.depth]
		if slices.Contains(chain, f.section) {
			return errors.NewParse("scripture", strings.Join(append(slices.Clip(f.path), f.section.Title), PathSeparator),
				fmt.Sprintf("section %q contains itself", f.section.Title))
		}
		chain = append(chain, f.section)

		for i := range f.section.Verses {
			if !yield(Visit{Verse: &f.section.Verses[i], Section: f.section, Path: f.path}) {
				return nil
			}
		}

		if len(f.section.Sections) == 0 {
			continue
		}
		childPath := append(slices.Clip(f.path), f.section.Title)
		for i := len(f.section.Sections) - 1; i >= 0; i-- {
			stack = append(stack, frame{section: f.section.Sections[i], path: childPath, depth: f.depth + 1})
		}
	}
	return nil
}

// FindVerse returns the first verse numbered n in walk order.
func (s *Scripture) FindVerse(n int) (Visit, bool, error) {
	var found Visit
	ok := false
	err := Walk(s.Content.Sections, func(v Visit) bool {
		if v.Verse.Number == n {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok, err
}
