package extract

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/mosaic/model"
)

// textSource serves plain text and markdown. A form feed starts a new page;
// blank lines separate paragraphs.
type textSource struct {
	pages []string
}

func openText(data []byte) (*textSource, error) {
	if len(data) == 0 {
		return &textSource{}, nil
	}
	if !utf8.Valid(data) {
		return nil, &UnprocessableError{Reason: "text is not valid UTF-8", Err: errors.New("invalid UTF-8")}
	}

	s := strings.TrimPrefix(string(data), "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	pages := strings.Split(s, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		// a trailing form feed ends the last page rather than opening one
		pages = pages[:len(pages)-1]
	}
	return &textSource{pages: pages}, nil
}

func (t *textSource) pageCount() int { return len(t.pages) }

func (t *textSource) close() error { return nil }

func (t *textSource) page(_ context.Context, number int) Page {
	var regions []model.RawRegion
	for _, para := range paragraphs(t.pages[number-1]) {
		regions = append(regions, model.RawRegion{
			Type:     model.RegionText,
			Text:     para,
			MIMEType: "text/plain",
		})
	}
	return Page{Regions: regions}
}

// paragraphs splits s on blank lines. Lines within a paragraph keep their
// line breaks; surrounding whitespace is trimmed.
func paragraphs(s string) []string {
	var (
		out     []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	flush()
	return out
}
