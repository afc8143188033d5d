package scripture

// Category groups scriptures on the home page.
type Category struct {
	// Slug is the stable identifier used in URLs (e.g., "divya-prabandham").
	Slug string `json:"slug"`

	// Name is the display name. Scriptures refer to a category by this name.
	Name string `json:"name"`

	// Description is the short description shown on the category grid.
	Description string `json:"description"`

	// LongDescription is optional.
	LongDescription string `json:"longDescription,omitempty"`
}

// Scripture is a single text with its metadata and content tree.
type Scripture struct {
	Metadata Metadata `json:"metadata"`
	Content  Content  `json:"content"`
}

// Metadata describes a scripture.
type Metadata struct {
	Slug string `json:"slug"`

	// Name is the display name (scripture_name in the at-rest schema).
	Name string `json:"scripture_name"`

	Author string `json:"author"`

	// Category is free text matched against Category.Name, not a foreign key.
	Category string `json:"category"`

	// Year is kept verbatim; sources write both "c. 800 CE" and 1017.
	Year string `json:"year_of_composition,omitempty"`

	TotalChapters int `json:"total_chapters,omitempty"`
	TotalVerses   int `json:"total_verses,omitempty"`
}

// Content holds the top-level sections of a scripture.
type Content struct {
	Sections []*Section `json:"sections"`
}

// Section is a titled node of the content tree.
type Section struct {
	Title    string     `json:"title"`
	Sections []*Section `json:"sections,omitempty"`
	Verses   []Verse    `json:"verses,omitempty"`
}

// Verse is a numbered verse. Numbers are unique within their section only.
type Verse struct {
	Number             int          `json:"verse_number"`
	OriginalText       string       `json:"original_text"`
	IASTText           string       `json:"iast_text"`
	EnglishTranslation string       `json:"english_translation,omitempty"`
	Commentaries       []Commentary `json:"commentaries"`
}

// Commentary is a commentary entry on a verse. Only Text is searchable.
type Commentary struct {
	Text   string `json:"commentary"`
	Author string `json:"author,omitempty"`
	Source string `json:"source,omitempty"`
}

// CountVerses returns the number of verses in the content tree.
// The tree must be acyclic.
func (s *Scripture) CountVerses() int {
	n := 0
	stack := append([]*Section(nil), s.Content.Sections...)
	for len(stack) > 0 {
		sec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if sec == nil {
			continue
		}
		n += len(sec.Verses)
		stack = append(stack, sec.Sections...)
	}
	return n
}
