package validators

import "strings"

func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
