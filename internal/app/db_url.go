package app

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/live-sports-hub/internal/config"
)

// dbNameFromURL extracts a database name for span attributes.
func dbNameFromURL(driver, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if driver == config.DBDriverSQLite {
		return sqliteDBName(trimmed)
	}

	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

func sqliteDBName(raw string) string {
	path := strings.TrimPrefix(raw, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
