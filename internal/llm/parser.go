package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first balanced {...} block in text. Braces
// inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start != -1 {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseVerdict reads the model's answer. Anything other than an explicit
// boolean true for payment_valid is a rejection.
func ParseVerdict(text string) Verdict {
	block, ok := ExtractJSONObject(text)
	if !ok {
		return Verdict{Reason: FallbackReason}
	}

	var v verdictJSON
	if err := json.Unmarshal([]byte(block), &v); err != nil || v.PaymentValid == nil {
		return Verdict{Reason: FallbackReason}
	}

	reason := strings.TrimSpace(v.Reason)
	if *v.PaymentValid {
		return Verdict{Approved: true, Reason: reason}
	}
	if reason == "" {
		reason = FallbackReason
	}
	return Verdict{Reason: reason}
}
