// Package script writes the caption lines of a brand promo video.
package script

import (
	"strings"

	"brand-video-backend/internal/models"
)

const maxDescriptionRunes = 100

var templates = map[models.Industry][]string{
	models.IndustryTechnology: {
		"Introducing {brand} - Where innovation meets excellence.",
		"Transform your digital experience with {brand}.",
		"The future is here with {brand}.",
	},
	models.IndustryHealthcare: {
		"Your health, our priority. Welcome to {brand}.",
		"Caring for you with cutting-edge healthcare solutions.",
		"Trust {brand} for your wellness journey.",
	},
	models.IndustryFinance: {
		"Secure your financial future with {brand}.",
		"Smart money management starts here.",
		"Your trusted financial partner.",
	},
	models.IndustryRetail: {
		"Discover amazing products at {brand}.",
		"Quality meets affordability.",
		"Shop with confidence today.",
	},
	models.IndustryDefault: {
		"Experience excellence with {brand}.",
		"Quality you can trust. Service you deserve.",
		"Choose {brand} for the best.",
	},
}

var closingLines = []models.ScriptLine{
	"Join thousands of satisfied customers.",
	"Contact us today to get started.",
}

// Compose returns the ordered caption lines for brand. It never fails: an
// internal error yields a two-line fallback naming the brand.
func Compose(brand models.BrandRequest) (lines []models.ScriptLine) {
	defer func() {
		if r := recover(); r != nil {
			lines = Fallback(brand)
		}
	}()

	for _, tmpl := range templatesFor(brand.IndustryKind()) {
		lines = append(lines, models.ScriptLine(expand(tmpl, brand.BrandName)))
	}

	if brand.Description != "" {
		lines = append(lines, DescriptionLine(brand.Description))
	}

	switch brand.Duration {
	case 15:
		lines = lines[:min(2, len(lines))]
	case 60:
		lines = append(lines, closingLines...)
	}

	if len(lines) == 0 {
		return Fallback(brand)
	}
	return lines
}

// Fallback is the script used when composition fails.
func Fallback(brand models.BrandRequest) []models.ScriptLine {
	return []models.ScriptLine{
		models.ScriptLine("Welcome to " + brand.BrandName),
		"Quality and excellence combined.",
	}
}

// DescriptionLine truncates description to 100 characters, marking the cut
// with "...".
func DescriptionLine(description string) models.ScriptLine {
	runes := []rune(description)
	if len(runes) <= maxDescriptionRunes {
		return models.ScriptLine(description)
	}
	return models.ScriptLine(string(runes[:maxDescriptionRunes]) + "...")
}

func templatesFor(industry models.Industry) []string {
	if t, ok := templates[industry]; ok {
		return t
	}
	return templates[models.IndustryDefault]
}

func expand(tmpl, brandName string) string {
	return strings.ReplaceAll(tmpl, "{brand}", brandName)
}
