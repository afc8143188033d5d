// Package search implements full-text search over the scripture library.
//
// A query is normalized (trimmed, lowercased, internal whitespace collapsed)
// and matched as a plain substring against each document's field blob: the
// lowercase, space-joined text fields of a category, a scripture header or a
// verse. There is no tokenization, stemming or scoring. Matches are ordered by
// three tie-breaks (exact title, title prefix, kind priority) with insertion
// order kept among equals, and the first MaxResults are returned.
//
// Every search reads the document set from its catalog.Store; nothing is
// indexed or retained between calls.
package search
