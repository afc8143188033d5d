package search

import (
	"context"
	"sync/atomic"

	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/catalog"
)

// memStore serves a fixed snapshot and counts loads.
type memStore struct {
	snap  *catalog.Snapshot
	err   error
	loads atomic.Int32
}

func (m *memStore) Load(ctx context.Context) (*catalog.Snapshot, error) {
	m.loads.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.snap.Clone(), nil
}

func v(n int, original, translation string, commentaries ...string) scripture.Verse {
	out := scripture.Verse{
		Number:             n,
		OriginalText:       original,
		IASTText:           "iast " + original,
		EnglishTranslation: translation,
		Commentaries:       []scripture.Commentary{},
	}
	for _, c := range commentaries {
		out.Commentaries = append(out.Commentaries, scripture.Commentary{Text: c, Author: "commentator"})
	}
	return out
}

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Categories: []scripture.Category{
			{Slug: "itihasa", Name: "Itihasa", Description: "Epic histories of dharma"},
			{Slug: "divya-prabandham", Name: "Divya Prabandham", Description: "Tamil hymns", LongDescription: "Four thousand verses of the Alvars"},
		},
		Scriptures: []*scripture.Scripture{
			{
				Metadata: scripture.Metadata{Slug: "bhagavad-gita", Name: "Bhagavad Gita", Author: "Vyasa", Category: "Itihasa"},
				Content: scripture.Content{Sections: []*scripture.Section{
					{Title: "Chapter 1", Verses: []scripture.Verse{
						v(1, "dharmakshetre kurukshetre", "On the field of dharma, the field of the Kurus"),
						v(2, "sanjaya uvaca", "Sanjaya said", "Bhagavad context"),
					}},
					{Title: "Chapter 2", Sections: []*scripture.Section{
						{Title: "Sankhya Yoga", Verses: []scripture.Verse{
							v(1, "na jayate mriyate va", "The self is never born and never dies"),
						}},
					}},
				}},
			},
			{
				Metadata: scripture.Metadata{Slug: "tiruppavai", Name: "Tiruppavai", Author: "Andal", Category: "Divya Prabandham"},
				Content: scripture.Content{Sections: []*scripture.Section{
					{Title: "Pasurams", Verses: []scripture.Verse{
						v(1, "margazhi thingal", ""),
					}},
				}},
			},
		},
	}
}
