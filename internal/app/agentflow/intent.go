package agentflow

import "strings"

type Intent string

const (
	IntentChat   Intent = "chat"
	IntentDesign Intent = "design"
)

// DetectIntent is a keyword check: any mention of "design" goes to the
// design tool.
func DetectIntent(text string) Intent {
	if strings.Contains(strings.ToLower(text), "design") {
		return IntentDesign
	}
	return IntentChat
}
