package search

import (
	"fmt"
	"strconv"

	"github.com/srikosa/srikosa/core/scripture"
)

// MaxResults caps the number of results returned by a search.
const MaxResults = 50

// SnippetLength is the number of characters of original text shown for a
// verse without a translation.
const SnippetLength = 100

// Result is a single search hit.
type Result struct {
	Type        Kind   `json:"type"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url"`

	// Cross-references carry display names, not slugs: the scripture name
	// and the category name the scripture is filed under.
	Scripture   string `json:"scripture,omitempty"`
	VerseNumber int    `json:"verseNumber,omitempty"`
	Category    string `json:"category,omitempty"`
}

func categoryResult(c *scripture.Category) Result {
	return Result{
		Type:     KindCategory,
		Title:    c.Name,
		Subtitle: c.Description,
		URL:      CategoryURL(c.Slug),
		Category: c.Name,
	}
}

func scriptureResult(s *scripture.Scripture) Result {
	return Result{
		Type:      KindScripture,
		Title:     s.Metadata.Name,
		Subtitle:  fmt.Sprintf("By %s • %s", s.Metadata.Author, s.Metadata.Category),
		URL:       ScriptureURL(s.Metadata.Slug),
		Scripture: s.Metadata.Name,
		Category:  s.Metadata.Category,
	}
}

func verseResult(s *scripture.Scripture, v scripture.Visit) Result {
	return Result{
		Type:        KindVerse,
		Title:       "Verse " + strconv.Itoa(v.Verse.Number),
		Subtitle:    s.Metadata.Name + scripture.PathSeparator + v.SectionLabel(),
		Content:     verseContent(v.Verse),
		URL:         VerseURL(s.Metadata.Slug, v.Verse.Number),
		Scripture:   s.Metadata.Name,
		VerseNumber: v.Verse.Number,
		Category:    s.Metadata.Category,
	}
}

// verseContent is the translation, or the start of the original text. The
// ellipsis is appended even when the text is shorter than the snippet.
func verseContent(v *scripture.Verse) string {
	if v.EnglishTranslation != "" {
		return v.EnglishTranslation
	}
	return Truncate(v.OriginalText, SnippetLength) + "..."
}

// Truncate returns the first n characters of s without splitting a
// multi-byte character.
func Truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// CategoryURL is the page of a category.
func CategoryURL(slug string) string {
	return "/" + slug
}

// ScriptureURL is the page of a scripture.
func ScriptureURL(slug string) string {
	return "/scripture/" + slug
}

// VerseURL is the page of a verse.
func VerseURL(slug string, n int) string {
	return "/scripture/" + slug + "/verse/" + strconv.Itoa(n)
}
