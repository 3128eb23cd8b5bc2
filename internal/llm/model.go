package llm

// FallbackReason is shown when the model's answer cannot be read as a verdict.
const FallbackReason = "The AI could not confirm the payment details. Please ensure the screenshot is clear and shows the correct recipient."

type Verdict struct {
	Approved bool
	Reason   string
}

type verdictJSON struct {
	PaymentValid *bool  `json:"payment_valid"`
	Reason       string `json:"reason"`
}
