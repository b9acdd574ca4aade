package chunk

import (
	"fmt"
	"strings"

	"github.com/tsawler/mosaic/model"
)

// TableLabel renders a short display line for a table chunk
func TableLabel(md *model.TableMetadata) string {
	if md == nil {
		return "Table"
	}
	names := make([]string, 0, len(md.Columns))
	for _, c := range md.Columns {
		names = append(names, c.Name)
	}
	label := fmt.Sprintf("Table (%s): %d rows x %d columns", md.Purpose, md.RowCount, md.ColumnCount)
	if len(names) > 0 {
		label += " [" + strings.Join(names, ", ") + "]"
	}
	return label
}

// ImageLabel renders a short display line for an image chunk
func ImageLabel(md *model.ImageMetadata) string {
	if md == nil {
		return "Image"
	}
	return fmt.Sprintf("Image (%s, %dx%d %s)", md.LikelyType, md.Width, md.Height, md.Format)
}
