package setting

const (
	KeyLanguage = "language"
	KeyTheme    = "theme"
	KeySport    = "sport"
	KeyLeague   = "league"
)

type Setting struct {
	Key   string
	Value string
}

const (
	DefaultLanguage = "en"
	DefaultTheme    = "system"
)

// Defaults are returned for keys that were never written.
func Defaults() map[string]string {
	return map[string]string{
		KeyLanguage: DefaultLanguage,
		KeyTheme:    DefaultTheme,
	}
}
