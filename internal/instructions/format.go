package instructions

import (
	"strings"
)

const (
	Header        = "UW Instructions:"
	CallBanner    = "⚠️ Phone verification required. Please confirm the following with the customer:"
	AdviceTrailer = "Review Advice:"

	NoCallContent = "(No call verification content)"
	NoAdvice      = "(No review advice)"
)

// Format builds the instruction block. Empty inputs are replaced by
// placeholders so every section is always present.
func Format(callContent, advice string, needCall bool) string {
	callContent = orPlaceholder(callContent, NoCallContent)
	advice = orPlaceholder(advice, NoAdvice)

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	if needCall {
		b.WriteString(CallBanner)
		b.WriteString("\n")
	}
	b.WriteString(callContent)
	b.WriteString("\n\n")
	b.WriteString(AdviceTrailer)
	b.WriteString("\n")
	b.WriteString(advice)
	return b.String()
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
