package scripture

import "slices"

// Clone returns a deep copy of the scripture. The content tree must be acyclic.
func (s *Scripture) Clone() *Scripture {
	if s == nil {
		return nil
	}
	return &Scripture{
		Metadata: s.Metadata,
		Content:  Content{Sections: cloneSections(s.Content.Sections)},
	}
}

func cloneSections(in []*Section) []*Section {
	if in == nil {
		return nil
	}
	out := make([]*Section, len(in))
	for i, sec := range in {
		if sec == nil {
			continue
		}
		c := &Section{
			Title:    sec.Title,
			Sections: cloneSections(sec.Sections),
		}
		if sec.Verses != nil {
			c.Verses = make([]Verse, len(sec.Verses))
			for j, v := range sec.Verses {
				c.Verses[j] = v
				c.Verses[j].Commentaries = slices.Clone(v.Commentaries)
			}
		}
		out[i] = c
	}
	return out
}
