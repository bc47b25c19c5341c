package validators

import "strings"

var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhone strips spaces, dashes and parentheses and reports whether
// the result is a 10 digit number starting with 01 or 07.
func NormalizePhone(phone string) (string, bool) {
	p := phoneNoise.Replace(strings.TrimSpace(phone))
	if len(p) != 10 {
		return p, false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return p, false
		}
	}
	if !strings.HasPrefix(p, "01") && !strings.HasPrefix(p, "07") {
		return p, false
	}
	return p, true
}
