package search

import (
	"strings"

	"github.com/srikosa/srikosa/core/scripture"
)

// CategoryFields returns the searchable fields of a category.
func CategoryFields(c *scripture.Category) []string {
	return nonEmpty(c.Name, c.Description, c.LongDescription)
}

// ScriptureFields returns the searchable fields of a scripture header. The
// verses are searched separately.
func ScriptureFields(s *scripture.Scripture) []string {
	return nonEmpty(s.Metadata.Name, s.Metadata.Author, s.Metadata.Category)
}

// VerseFields returns the searchable fields of a verse: original text,
// transliteration, translation and each commentary text.
func VerseFields(v *scripture.Verse) []string {
	fields := make([]string, 0, 3+len(v.Commentaries))
	fields = append(fields, v.OriginalText, v.IASTText, v.EnglishTranslation)
	for _, c := range v.Commentaries {
		fields = append(fields, c.Text)
	}
	return nonEmpty(fields...)
}

// Blob joins fields with single spaces and lowercases the result.
func Blob(fields []string) string {
	return strings.ToLower(strings.Join(fields, " "))
}

// nonEmpty drops empty fields so absent values add no separator whitespace.
func nonEmpty(fields ...string) []string {
	out := fields[:0:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
