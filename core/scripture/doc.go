// Package scripture defines the read-only document model served by Śrīkoṣa.
//
// # Core Types
//
// The model is organized hierarchically:
//
//   - Category: a named grouping of scriptures (matched by display name)
//   - Scripture: metadata plus a content tree of Sections
//   - Section: a titled node holding child Sections, Verses, both or neither
//   - Verse: original text, transliteration, optional translation and commentaries
//
// # Traversal
//
// Walk visits verses depth-first, a section's own verses before its children,
// with the chain of ancestor titles that forms a verse's display label.
//
// # Decoding
//
// DecodeCategories and DecodeScripture are strict: a missing required field,
// a JSON type mismatch or a non-positive verse number fails with a
// *errors.ParseError carrying the JSON path of the offending value. Stores turn
// these into data-unavailable failures; nothing is papered over with defaults.
package scripture
