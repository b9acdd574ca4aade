package tablemeta

import (
	"regexp"

	"github.com/tsawler/mosaic/model"
)

var (
	quantityHeader = regexp.MustCompile(`(?i)\b(qty|quantity|stock|units?|count|on hand|available|in stock)\b`)
	categoryHeader = regexp.MustCompile(`(?i)\b(item|product|category|sku|location|warehouse|part)s?\b`)
)

// purpose returns the first purpose in priority order whose rule matches
func (a *Analyzer) purpose(md *model.TableMetadata, columns []*columnData) model.TablePurpose {
	for _, p := range a.config.PurposePriority {
		if matchesPurpose(p, md, columns) {
			return p
		}
	}
	return model.PurposeGeneric
}

func matchesPurpose(p model.TablePurpose, md *model.TableMetadata, columns []*columnData) bool {
	switch p {
	case model.PurposeFinancial:
		return md.FinancialIndicators
	case model.PurposeSchedule:
		return isSchedule(columns)
	case model.PurposeInventory:
		return isInventory(columns)
	case model.PurposeMetrics:
		return isMetrics(columns)
	default:
		return false
	}
}

// isSchedule requires a date column whose dates run in one direction down
// the rows
func isSchedule(columns []*columnData) bool {
	for _, c := range columns {
		if c.profile.Type != model.ColumnDate || len(c.dates) < 2 {
			continue
		}
		ascending, descending, changed := true, true, false
		for i := 1; i < len(c.dates); i++ {
			prev, cur := c.dates[i-1], c.dates[i]
			if cur.Before(prev) {
				ascending = false
			}
			if cur.After(prev) {
				descending = false
			}
			if !cur.Equal(prev) {
				changed = true
			}
		}
		if changed && (ascending || descending) {
			return true
		}
	}
	return false
}

// isInventory requires a quantity-like numeric column and a categorical text
// column
func isInventory(columns []*columnData) bool {
	quantity, category := false, false
	for _, c := range columns {
		switch c.profile.Type {
		case model.ColumnNumeric:
			if quantityHeader.MatchString(c.header) || (c.integral && len(c.numbers) > 0 && !c.money) {
				quantity = true
			}
		case model.ColumnText:
			if isCategorical(c) || categoryHeader.MatchString(c.header) {
				category = true
			}
		}
	}
	return quantity && category
}

// isMetrics requires two or more numeric columns and no date column
func isMetrics(columns []*columnData) bool {
	numeric := 0
	for _, c := range columns {
		switch c.profile.Type {
		case model.ColumnNumeric:
			numeric++
		case model.ColumnDate:
			return false
		}
	}
	return numeric >= 2
}
