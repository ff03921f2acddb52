package intelligence

import (
	"context"
	"regexp"
	"strings"

	"skybook/models"
)

var (
	routeRe = regexp.MustCompile(`(?i)from\s+([a-z ]+?)\s+to\s+([a-z ]+?)(?:\s+on\b|\s+tomorrow\b|\s+today\b|\s*$|,)`)
	pnrRe   = regexp.MustCompile(`\b([A-Z0-9]{6,8})\b`)
	dateRe  = regexp.MustCompile(`(?i)\b(today|tomorrow|day after tomorrow|next \w+|\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})\b`)
	paxRe   = regexp.MustCompile(`(?i)\b(\d)\s+(?:passengers?|people|persons?|adults?)\b`)
)

// KeywordExtractor is the rule-based fallback used when no Gemini key is
// configured. It handles the common phrasings and leaves the rest empty for
// the agent to re-prompt.
type KeywordExtractor struct{}

func (KeywordExtractor) Extract(ctx context.Context, text string, history []string) (*models.Extraction, error) {
	lower := strings.ToLower(text)
	extraction := &models.Extraction{Intent: IntentChat}

	switch {
	case strings.Contains(lower, "cancel"):
		extraction.Intent = IntentCancel
	case strings.Contains(lower, "status") || strings.Contains(lower, "check my booking"):
		extraction.Intent = IntentCheckStatus
	case strings.Contains(lower, "book") || strings.Contains(lower, "flight") || strings.Contains(lower, "fly"):
		extraction.Intent = IntentBookFlight
	}

	if m := routeRe.FindStringSubmatch(text); m != nil {
		extraction.Origin = strings.TrimSpace(m[1])
		extraction.Destination = strings.TrimSpace(m[2])
	}
	if m := dateRe.FindString(text); m != "" {
		extraction.Date = m
	}
	if m := paxRe.FindStringSubmatch(text); m != nil {
		extraction.Passengers = int(m[1][0] - '0')
	}
	if extraction.Intent == IntentCheckStatus || extraction.Intent == IntentCancel {
		if m := pnrRe.FindString(text); m != "" {
			extraction.PNR = m
		}
	}
	if strings.Contains(lower, "business") {
		extraction.Class = "business"
	}
	return extraction, nil
}
