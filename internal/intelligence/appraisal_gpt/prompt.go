package appraisal_gpt

import (
	"fmt"
	"strings"
)

// PromptInput carries the book attributes and precomputed signals embedded
// in the appraisal prompt.
type PromptInput struct {
	Title         string
	Author        string
	Genre         string
	Condition     string
	DemandScore   int
	RarityScore   int
	ExchangeCount int
	MinPoints     int
	MaxPoints     int
}

const systemPrompt = `You are a book exchange marketplace appraiser. Given a book listing
and its market signals, reply with a single JSON object of the form
{"points": <integer>, "reasoning": "<one sentence>"} and nothing else.`

// BuildPrompt renders the user message for a point appraisal request.
func BuildPrompt(in *PromptInput) string {
	var b strings.Builder
	b.WriteString("Estimate the tradeable point value for this book listing.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	if in.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", in.Author)
	}
	if in.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", in.Genre)
	}
	fmt.Fprintf(&b, "Condition: %s\n", in.Condition)
	fmt.Fprintf(&b, "Demand score (0-5): %d\n", in.DemandScore)
	fmt.Fprintf(&b, "Rarity score (0-3): %d\n", in.RarityScore)
	fmt.Fprintf(&b, "Historical exchanges: %d\n", in.ExchangeCount)
	fmt.Fprintf(&b, "\nThe value must be an integer between %d and %d.\n", in.MinPoints, in.MaxPoints)
	b.WriteString(`Respond with JSON only: {"points": <integer>, "reasoning": "<one sentence>"}`)
	return b.String()
}
