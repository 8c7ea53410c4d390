package model

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// Slug lower-cases s and turns every whitespace run into a single hyphen.
// "Food & Beverage" becomes "food-&-beverage", same as the wizard did.
func Slug(s string) string {
	return reSpaces.ReplaceAllLiteralString(strings.ToLower(s), "-")
}

// TitleSlug is the value kept in the lastSurveyTitle slot.
func TitleSlug(category string) string {
	return Slug(category) + "_survey"
}

// FileName is the download name of a generated survey.
func FileName(category string) string {
	return TitleSlug(category) + ".html"
}
