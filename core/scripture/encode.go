package scripture

import "encoding/json"

// MarshalJSON always writes content.sections as an array so encoded documents
// decode again under the strict schema.
func (c Content) MarshalJSON() ([]byte, error) {
	type plain Content
	p := plain(c)
	if p.Sections == nil {
		p.Sections = []*Section{}
	}
	return json.Marshal(p)
}

// MarshalJSON always writes commentaries as an array.
func (v Verse) MarshalJSON() ([]byte, error) {
	type plain Verse
	p := plain(v)
	if p.Commentaries == nil {
		p.Commentaries = []Commentary{}
	}
	return json.Marshal(p)
}

// Encode returns the at-rest JSON form of a scripture.
func Encode(s *Scripture) ([]byte, error) {
	return json.Marshal(s)
}
