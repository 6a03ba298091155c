package match

import "strings"

const DefaultSport = "Soccer"

var sportByAlias = map[string]string{
	"football":   "Soccer",
	"soccer":     "Soccer",
	"basketball": "Basketball",
	"tennis":     "Tennis",
	"volleyball": "Volleyball",
	"handball":   "Handball",
}

// ResolveSport maps a UI sport id to the provider's sport name. Unknown
// values are passed through so new provider sports keep working.
func ResolveSport(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultSport
	}
	if mapped, ok := sportByAlias[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return trimmed
}

// SupportedSports lists the provider names the hub offers by default.
func SupportedSports() []string {
	return []string{"Soccer", "Basketball", "Tennis", "Volleyball", "Handball"}
}
