package search

import "fmt"

// Kind is the type of document a result refers to.
type Kind uint8

const (
	KindCategory Kind = iota + 1
	KindScripture
	KindVerse
)

// Priority orders kinds when results otherwise tie. Higher sorts first.
func (k Kind) Priority() int {
	switch k {
	case KindCategory:
		return 3
	case KindScripture:
		return 2
	case KindVerse:
		return 1
	}
	panic(fmt.Sprintf("search: unknown result kind %d", k))
}

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindScripture:
		return "scripture"
	case KindVerse:
		return "verse"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// MarshalText encodes the kind as its lowercase name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindCategory, KindScripture, KindVerse:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("search: unknown result kind %d", k)
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "category":
		*k = KindCategory
	case "scripture":
		*k = KindScripture
	case "verse":
		*k = KindVerse
	default:
		return fmt.Errorf("search: unknown result kind %q", b)
	}
	return nil
}
