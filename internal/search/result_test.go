package search

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srikosa/srikosa/core/scripture"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "धर्म", Truncate("धर्मक्षेत्रे", 4))
}

func TestVerseContent(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := verseContent(&scripture.Verse{OriginalText: long})
	assert.Equal(t, strings.Repeat("a", 100)+"...", got)

	assert.Equal(t, "short...", verseContent(&scripture.Verse{OriginalText: "short"}))
	assert.Equal(t, "translated", verseContent(&scripture.Verse{OriginalText: long, EnglishTranslation: "translated"}))

	devanagari := strings.Repeat("ध", 150)
	got = verseContent(&scripture.Verse{OriginalText: devanagari})
	assert.Equal(t, strings.Repeat("ध", 100)+"...", got)
}

func TestResultBuilders(t *testing.T) {
	snap := testSnapshot()

	c := categoryResult(&snap.Categories[0])
	assert.Equal(t, Result{
		Type: KindCategory, Title: "Itihasa", Subtitle: "Epic histories of dharma",
		URL: "/itihasa", Category: "Itihasa",
	}, c)

	gita := snap.Scriptures[0]
	s := scriptureResult(gita)
	assert.Equal(t, "By Vyasa • Itihasa", s.Subtitle)
	assert.Equal(t, "/scripture/bhagavad-gita", s.URL)
	assert.Equal(t, "Bhagavad Gita", s.Scripture)
	assert.Equal(t, "Itihasa", s.Category)

	visit, ok, err := gita.FindVerse(1)
	require.NoError(t, err)
	require.True(t, ok)
	vr := verseResult(gita, visit)
	assert.Equal(t, "Verse 1", vr.Title)
	assert.Equal(t, "Bhagavad Gita • Chapter 1", vr.Subtitle)
	assert.Equal(t, "/scripture/bhagavad-gita/verse/1", vr.URL)
	assert.Equal(t, 1, vr.VerseNumber)
	assert.Equal(t, "Bhagavad Gita", vr.Scripture)
	assert.Equal(t, "Itihasa", vr.Category)
}

func TestResultCrossReferences(t *testing.T) {
	snap := testSnapshot()
	gita := snap.Scriptures[0]
	visit, ok, err := gita.FindVerse(1)
	require.NoError(t, err)
	require.True(t, ok)

	tests := []struct {
		name      string
		result    Result
		scripture string
		verse     int
		category  string
	}{
		{"category", categoryResult(&snap.Categories[0]), "", 0, snap.Categories[0].Name},
		{"scripture", scriptureResult(gita), gita.Metadata.Name, 0, gita.Metadata.Category},
		{"verse", verseResult(gita, visit), gita.Metadata.Name, 1, gita.Metadata.Category},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.scripture, tt.result.Scripture)
			assert.Equal(t, tt.verse, tt.result.VerseNumber)
			assert.Equal(t, tt.category, tt.result.Category)
		})
	}
}

func TestResultJSON(t *testing.T) {
	b, err := json.Marshal(Result{Type: KindScripture, Title: "Tiruppavai", URL: "/scripture/tiruppavai", Scripture: "Tiruppavai", Category: "Divya Prabandham"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"scripture","title":"Tiruppavai","url":"/scripture/tiruppavai","scripture":"Tiruppavai","category":"Divya Prabandham"}`, string(b))

	b, err = json.Marshal(Result{Type: KindVerse, Title: "Verse 3", Content: "c", URL: "/u", VerseNumber: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"verse","title":"Verse 3","content":"c","url":"/u","verseNumber":3}`, string(b))
}
