package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/mosaic/model"
)

// Block is a run of consecutive lines that read as one paragraph
type Block struct {
	BBox  model.BBox
	Lines []Line
}

// Text joins the block's lines into a single passage. A hyphen at the end of
// a line followed by a lower-case word is treated as a soft break.
func (b Block) Text() string {
	var sb strings.Builder
	for i, line := range b.Lines {
		t := strings.TrimSpace(line.Text)
		if i > 0 && sb.Len() > 0 {
			prev := sb.String()
			if strings.HasSuffix(prev, "-") && startsLower(t) {
				sb.Reset()
				sb.WriteString(strings.TrimSuffix(prev, "-"))
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// BlockConfig holds configuration for block grouping
type BlockConfig struct {
	// MaxGapRatio is the largest vertical gap between lines of one block, as a
	// multiple of the average line height (default: 0.9)
	MaxGapRatio float64

	// FontSizeTolerance is the largest relative font-size change allowed
	// within a block (default: 0.25)
	FontSizeTolerance float64
}

// DefaultBlockConfig returns sensible default configuration
func DefaultBlockConfig() BlockConfig {
	return BlockConfig{
		MaxGapRatio:       0.9,
		FontSizeTolerance: 0.25,
	}
}

// GroupBlocks merges consecutive lines into blocks. Lines must be ordered top
// to bottom, as returned by LineDetector.Detect.
func GroupBlocks(lines []Line, cfg BlockConfig) []Block {
	if len(lines) == 0 {
		return nil
	}

	var blocks []Block
	current := Block{BBox: lines[0].BBox, Lines: []Line{lines[0]}}

	for _, line := range lines[1:] {
		prev := current.Lines[len(current.Lines)-1]
		height := (prev.Height + line.Height) / 2
		gap := prev.BBox.Bottom() - line.BBox.Top()

		sizeChange := 0.0
		if prev.AverageFontSize > 0 {
			sizeChange = absFloat64(line.AverageFontSize-prev.AverageFontSize) / prev.AverageFontSize
		}

		if gap <= height*cfg.MaxGapRatio && sizeChange <= cfg.FontSizeTolerance {
			current.Lines = append(current.Lines, line)
			current.BBox = current.BBox.Union(line.BBox)
			continue
		}

		blocks = append(blocks, current)
		current = Block{BBox: line.BBox, Lines: []Line{line}}
	}
	blocks = append(blocks, current)

	return blocks
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsLower(r)
}
