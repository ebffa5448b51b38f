package models

import "strings"

// Industry selects the script templates and colour palette used for a video.
type Industry string

const (
	IndustryTechnology Industry = "technology"
	IndustryHealthcare Industry = "healthcare"
	IndustryFinance    Industry = "finance"
	IndustryRetail     Industry = "retail"
	IndustryDefault    Industry = "default"
)

// DefaultDuration is used when a request omits the duration.
const DefaultDuration = 30

// ParseIndustry maps free text onto a known industry. Anything unrecognised
// resolves to IndustryDefault.
func ParseIndustry(s string) Industry {
	switch Industry(strings.ToLower(strings.TrimSpace(s))) {
	case IndustryTechnology:
		return IndustryTechnology
	case IndustryHealthcare:
		return IndustryHealthcare
	case IndustryFinance:
		return IndustryFinance
	case IndustryRetail:
		return IndustryRetail
	default:
		return IndustryDefault
	}
}

// BrandRequest is the brand metadata a video is generated from. It is passed
// by value through the pipeline and never modified after submission.
type BrandRequest struct {
	BrandName   string
	Industry    string
	Description string
	Duration    int
}

// IndustryKind returns the parsed industry for template and palette lookup.
func (b BrandRequest) IndustryKind() Industry {
	return ParseIndustry(b.Industry)
}

// ScriptLine is one caption line; slice order is display order.
type ScriptLine string

// VisualAsset is the on-disk still rendered for the script line at the same index.
type VisualAsset struct {
	Index int
	Path  string
}
