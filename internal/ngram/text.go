package ngram

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Forms accepted by ApplyForm. The empty form leaves text untouched.
var Forms = []string{"", "NFC", "NFKC", "NFD", "NFKD"}

// ApplyForm applies a Unicode normalization form to text before extraction.
// Profiles and query text must be prepared with the same form.
func ApplyForm(text, form string) (string, error) {
	switch strings.ToUpper(form) {
	case "":
		return text, nil
	case "NFC":
		return norm.NFC.String(text), nil
	case "NFKC":
		return norm.NFKC.String(text), nil
	case "NFD":
		return norm.NFD.String(text), nil
	case "NFKD":
		return norm.NFKD.String(text), nil
	}
	return "", fmt.Errorf("ngram: unknown normalization form %q", form)
}

// ValidForm reports whether form is accepted by ApplyForm.
func ValidForm(form string) bool {
	up := strings.ToUpper(form)
	for _, f := range Forms {
		if f == up {
			return true
		}
	}
	return false
}
