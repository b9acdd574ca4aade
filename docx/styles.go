package docx

import (
	"strconv"
	"strings"
)

// maxStyleDepth bounds basedOn chains, which may be cyclic in broken files
const maxStyleDepth = 16

// styleSet resolves paragraph styles to headings
type styleSet map[string]styleDefXML

func newStyleSet(s *stylesXML) styleSet {
	set := make(styleSet)
	if s == nil {
		return set
	}
	for _, st := range s.Styles {
		if st.Type == "" || st.Type == "paragraph" {
			set[st.StyleID] = st
		}
	}
	return set
}

// isHeading reports whether a paragraph with props is a heading: it has an
// outline level, or its style (or a style it is based on) is a heading or
// title style.
func (s styleSet) isHeading(props paragraphPropsXML) bool {
	if outline(props.OutlineLvl) {
		return true
	}
	id := props.Style.Val
	for range maxStyleDepth {
		if id == "" {
			return false
		}
		st, ok := s[id]
		if !ok {
			return headingName(id)
		}
		if outline(st.PPr.OutlineLvl) || headingName(st.Name.Val) || headingName(id) {
			return true
		}
		id = st.BasedOn.Val
	}
	return false
}

// outline reports whether lvl names a document outline level; level 9 is
// body text
func outline(lvl *valXML) bool {
	if lvl == nil {
		return false
	}
	n, err := strconv.Atoi(lvl.Val)
	return err == nil && n >= 0 && n < 9
}

func headingName(name string) bool {
	name = strings.ToLower(strings.ReplaceAll(name, " ", ""))
	return name == "title" || strings.HasPrefix(name, "heading")
}
