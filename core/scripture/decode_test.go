package scripture

import (
	"errors"
	"strings"
	"testing"

	srkerrors "github.com/srikosa/srikosa/core/errors"
)

const gitaJSON = `{
  "metadata": {
    "slug": "bhagavad-gita",
    "scripture_name": "Bhagavad Gita",
    "author": "Vyasa",
    "category": "Itihasa",
    "year_of_composition": "c. 400 BCE",
    "total_chapters": 18,
    "total_verses": 700
  },
  "content": {
    "sections": [
      {
        "title": "Chapter 1",
        "verses": [
          {
            "verse_number": 1,
            "original_text": "धर्मक्षेत्रे कुरुक्षेत्रे",
            "iast_text": "dharmakṣetre kurukṣetre",
            "english_translation": "On the field of dharma",
            "commentaries": [{"commentary": "Ramanuja explains", "author": "Ramanuja"}]
          }
        ],
        "sections": [
          {"title": "Part A", "verses": [
            {"verse_number": 2, "original_text": "x", "iast_text": "y", "commentaries": []}
          ]}
        ]
      }
    ]
  }
}`

func TestDecodeScripture(t *testing.T) {
	s, err := DecodeScripture([]byte(gitaJSON))
	if err != nil {
		t.Fatalf("DecodeScripture() error = %v", err)
	}

	if s.Metadata.Slug != "bhagavad-gita" || s.Metadata.Name != "Bhagavad Gita" {
		t.Errorf("metadata = %+v", s.Metadata)
	}
	if s.Metadata.Year != "c. 400 BCE" {
		t.Errorf("Year = %q", s.Metadata.Year)
	}
	if s.Metadata.TotalChapters != 18 {
		t.Errorf("TotalChapters = %d", s.Metadata.TotalChapters)
	}
	if len(s.Content.Sections) != 1 {
		t.Fatalf("got %d sections", len(s.Content.Sections))
	}
	ch1 := s.Content.Sections[0]
	if ch1.Verses[0].EnglishTranslation != "On the field of dharma" {
		t.Errorf("translation = %q", ch1.Verses[0].EnglishTranslation)
	}
	if got := ch1.Verses[0].Commentaries[0].Author; got != "Ramanuja" {
		t.Errorf("commentary author = %q", got)
	}
	if ch1.Sections[0].Verses[0].EnglishTranslation != "" {
		t.Error("absent translation should decode as empty")
	}
	if s.CountVerses() != 2 {
		t.Errorf("CountVerses() = %d, want 2", s.CountVerses())
	}
}

func TestDecodeScriptureNumericYear(t *testing.T) {
	doc := strings.Replace(gitaJSON, `"c. 400 BCE"`, `1017`, 1)
	s, err := DecodeScripture([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeScripture() error = %v", err)
	}
	if s.Metadata.Year != "1017" {
		t.Errorf("Year = %q, want 1017", s.Metadata.Year)
	}
}

func TestDecodeScriptureRejectsMalformed(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		wantPath string
	}{
		{"missing slug", `"slug": "bhagavad-gita",`, ``, "metadata.slug"},
		{"missing author", `"author": "Vyasa",`, ``, "metadata.author"},
		{"sections not array", `"sections": [`, `"sections": "oops", "ignored": [`, ""},
		{"verse number zero", `"verse_number": 2`, `"verse_number": 0`, "content.sections[0].sections[0].verses[0].verse_number"},
		{"missing commentaries", `, "commentaries": []}`, `}`, "content.sections[0].sections[0].verses[0].commentaries"},
		{"missing section title", `{"title": "Part A", `, `{`, "content.sections[0].sections[0].title"},
		{"null original text", `"original_text": "x"`, `"original_text": null`, "content.sections[0].sections[0].verses[0].original_text"},
		{"verses as string", `{"title": "Part A", "verses": [`, `{"title": "Part A", "verses": "none", "ignored": [`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(gitaJSON, tt.old, tt.new, 1)
			if doc == gitaJSON {
				t.Fatalf("fixture replacement %q did not apply", tt.old)
			}
			_, err := DecodeScripture([]byte(doc))
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *srkerrors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a ParseError", err)
			}
			if tt.wantPath != "" && pe.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", pe.Path, tt.wantPath)
			}
			if !errors.Is(err, srkerrors.ErrInvalidInput) {
				t.Error("parse errors should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestDecodeScriptureInvalidJSON(t *testing.T) {
	if _, err := DecodeScripture([]byte(`{"metadata": `)); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := DecodeScripture([]byte(`[]`)); err == nil {
		t.Error("expected error for array document")
	}
}

func TestDecodeCategories(t *testing.T) {
	data := `[
	  {"slug": "divya-prabandham", "name": "Divya Prabandham", "description": "Tamil hymns", "longDescription": "The 4000 verses"},
	  {"slug": "itihasa", "name": "Itihasa", "description": "Epics"}
	]`
	cats, err := DecodeCategories([]byte(data))
	if err != nil {
		t.Fatalf("DecodeCategories() error = %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories", len(cats))
	}
	if cats[0].LongDescription != "The 4000 verses" {
		t.Errorf("LongDescription = %q", cats[0].LongDescription)
	}
	if cats[1].LongDescription != "" {
		t.Errorf("absent LongDescription = %q", cats[1].LongDescription)
	}
}

func TestDecodeCategoriesRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"object instead of array": `{"slug": "x"}`,
		"null document":           `null`,
		"missing name":            `[{"slug": "x", "description": "d"}]`,
		"missing description":     `[{"slug": "x", "name": "n"}]`,
		"numeric slug":            `[{"slug": 7, "name": "n", "description": "d"}]`,
		"null entry":              `[null]`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeCategories([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClone(t *testing.T) {
	s, err := DecodeScripture([]byte(gitaJSON))
	if err != nil {
		t.Fatal(err)
	}
	c := s.Clone()
	c.Metadata.Name = "changed"
	c.Content.Sections[0].Title = "changed"
	c.Content.Sections[0].Verses[0].Commentaries[0].Text = "changed"
	c.Content.Sections[0].Sections[0].Verses[0].OriginalText = "changed"

	if s.Metadata.Name != "Bhagavad Gita" {
		t.Error("metadata shared with clone")
	}
	if s.Content.Sections[0].Title != "Chapter 1" {
		t.Error("section shared with clone")
	}
	if s.Content.Sections[0].Verses[0].Commentaries[0].Text != "Ramanuja explains" {
		t.Error("commentaries shared with clone")
	}
	if s.Content.Sections[0].Sections[0].Verses[0].OriginalText != "x" {
		t.Error("nested verses shared with clone")
	}
	if got := c.Content.Sections[0].Sections[0].Verses[0].Commentaries; got == nil || len(got) != 0 {
		t.Errorf("empty commentaries cloned as %#v, want empty non-nil", got)
	}
	if (*Scripture)(nil).Clone() != nil {
		t.Error("nil Clone should be nil")
	}
}
