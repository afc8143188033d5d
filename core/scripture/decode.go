package scripture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/srikosa/srikosa/core/errors"
)

// Wire types mirror the at-rest schema with pointers so that a missing field
// can be told apart from an empty one.

type wireCategory struct {
	Slug            *string `json:"slug"`
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	LongDescription *string `json:"longDescription"`
}

type wireScripture struct {
	Metadata *wireMetadata `json:"metadata"`
	Content  *wireContent  `json:"content"`
}

type wireMetadata struct {
	Slug          *string    `json:"slug"`
	Name          *string    `json:"scripture_name"`
	Author        *string    `json:"author"`
	Category      *string    `json:"category"`
	Year          *yearValue `json:"year_of_composition"`
	TotalChapters *int       `json:"total_chapters"`
	TotalVerses   *int       `json:"total_verses"`
}

type wireContent struct {
	Sections *[]*wireSection `json:"sections"`
}

type wireSection struct {
	Title    *string         `json:"title"`
	Sections *[]*wireSection `json:"sections"`
	Verses   *[]*wireVerse   `json:"verses"`
}

type wireVerse struct {
	Number             *int               `json:"verse_number"`
	OriginalText       *string            `json:"original_text"`
	IASTText           *string            `json:"iast_text"`
	EnglishTranslation *string            `json:"english_translation"`
	Commentaries       *[]*wireCommentary `json:"commentaries"`
}

type wireCommentary struct {
	Text   *string `json:"commentary"`
	Author *string `json:"author"`
	Source *string `json:"source"`
}

// yearValue accepts a JSON string or number.
type yearValue string

func (y *yearValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = yearValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("year_of_composition must be a string or number")
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("year_of_composition must be a string or number")
	}
	*y = yearValue(n.String())
	return nil
}

// DecodeCategories decodes and validates a categories collection document.
func DecodeCategories(data []byte) ([]Category, error) {
	var wire []*wireCategory
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, jsonError("categories", err)
	}
	if wire == nil {
		return nil, errors.NewParse("categories", "$", "expected an array of categories")
	}

	categories := make([]Category, 0, len(wire))
	for i, w := range wire {
		path := fmt.Sprintf("[%d]", i)
		if w == nil {
			return nil, errors.NewParse("categories", path, "category must be an object")
		}
		slug, err := required(w.Slug, path+".slug")
		if err != nil {
			return nil, err
		}
		name, err := required(w.Name, path+".name")
		if err != nil {
			return nil, err
		}
		desc, err := required(w.Description, path+".description")
		if err != nil {
			return nil, err
		}
		categories = append(categories, Category{
			Slug:            slug,
			Name:            name,
			Description:     desc,
			LongDescription: optional(w.LongDescription),
		})
	}
	return categories, nil
}

// DecodeScripture decodes and validates a single scripture document.
func DecodeScripture(data []byte) (*Scripture, error) {
	var wire wireScripture
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, jsonError("scripture", err)
	}

	if wire.Metadata == nil {
		return nil, missing("metadata")
	}
	m := wire.Metadata
	var meta Metadata
	var err error
	if meta.Slug, err = required(m.Slug, "metadata.slug"); err != nil {
		return nil, err
	}
	if meta.Name, err = required(m.Name, "metadata.scripture_name"); err != nil {
		return nil, err
	}
	if meta.Author, err = required(m.Author, "metadata.author"); err != nil {
		return nil, err
	}
	if meta.Category, err = required(m.Category, "metadata.category"); err != nil {
		return nil, err
	}
	if m.Year != nil {
		meta.Year = string(*m.Year)
	}
	if m.TotalChapters != nil {
		meta.TotalChapters = *m.TotalChapters
	}
	if m.TotalVerses != nil {
		meta.TotalVerses = *m.TotalVerses
	}

	if wire.Content == nil {
		return nil, missing("content")
	}
	if wire.Content.Sections == nil {
		return nil, missing("content.sections")
	}
	sections, err := convertSections(*wire.Content.Sections, "content.sections")
	if err != nil {
		return nil, err
	}

	return &Scripture{
		Metadata: meta,
		Content:  Content{Sections: sections},
	}, nil
}

func convertSections(wire []*wireSection, path string) ([]*Section, error) {
	out := make([]*Section, 0, len(wire))
	for i, ws := range wire {
		p := fmt.Sprintf("%s[%d]", path, i)
		if ws == nil {
			return nil, errors.NewParse("scripture", p, "section must be an object")
		}
		title, err := required(ws.Title, p+".title")
		if err != nil {
			return nil, err
		}
		sec := &Section{Title: title}
		if ws.Verses != nil {
			for j, wv := range *ws.Verses {
				v, err := convertVerse(wv, fmt.Sprintf("%s.verses[%d]", p, j))
				if err != nil {
					return nil, err
				}
				sec.Verses = append(sec.Verses, v)
			}
		}
		if ws.Sections != nil {
			children, err := convertSections(*ws.Sections, p+".sections")
			if err != nil {
				return nil, err
			}
			sec.Sections = children
		}
		out = append(out, sec)
	}
	return out, nil
}

func convertVerse(wv *wireVerse, path string) (Verse, error) {
	if wv == nil {
		return Verse{}, errors.NewParse("scripture", path, "verse must be an object")
	}
	if wv.Number == nil {
		return Verse{}, missing(path + ".verse_number")
	}
	if *wv.Number <= 0 {
		return Verse{}, errors.NewParse("scripture", path+".verse_number",
			fmt.Sprintf("verse_number must be positive, got %d", *wv.Number))
	}
	original, err := required(wv.OriginalText, path+".original_text")
	if err != nil {
		return Verse{}, err
	}
	iast, err := required(wv.IASTText, path+".iast_text")
	if err != nil {
		return Verse{}, err
	}
	if wv.Commentaries == nil {
		return Verse{}, missing(path + ".commentaries")
	}

	v := Verse{
		Number:             *wv.Number,
		OriginalText:       original,
		IASTText:           iast,
		EnglishTranslation: optional(wv.EnglishTranslation),
		Commentaries:       make([]Commentary, 0, len(*wv.Commentaries)),
	}
	for k, wc := range *wv.Commentaries {
		cp := fmt.Sprintf("%s.commentaries[%d]", path, k)
		if wc == nil {
			return Verse{}, errors.NewParse("scripture", cp, "commentary must be an object")
		}
		text, err := required(wc.Text, cp+".commentary")
		if err != nil {
			return Verse{}, err
		}
		v.Commentaries = append(v.Commentaries, Commentary{
			Text:   text,
			Author: optional(wc.Author),
			Source: optional(wc.Source),
		})
	}
	return v, nil
}

func required(v *string, path string) (string, error) {
	if v == nil {
		return "", missing(path)
	}
	return *v, nil
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func missing(path string) error {
	return errors.NewParse("scripture", path, "required field missing")
}

// jsonError converts a json decoding error into a ParseError that keeps the
// field name for type mismatches.
func jsonError(format string, err error) error {
	pe := errors.NewParse(format, "", err.Error())
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		pe.Path = typeErr.Field
		pe.Message = fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value)
	}
	return pe
}
