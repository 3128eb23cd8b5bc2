package llm

import (
	"fmt"
	"strings"

	"foodifusion/internal/config"
)

// BuildPaymentPrompt asks the model to check the screenshot against the
// configured recipients and answer with a two-key JSON object.
func BuildPaymentPrompt(accounts []config.Account) string {
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, fmt.Sprintf("'%s: %s'", a.Label, a.ID))
	}

	recipients := strings.Join(names, " or ")
	if len(names) > 1 {
		recipients = "either " + recipients
	}

	return "Analyze this payment screenshot. The payment must be made to " + recipients + ". " +
		"Respond with only a JSON object with two keys: 'payment_valid' (boolean) and 'reason' (string). " +
		"The 'reason' should be a brief explanation."
}
