package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name.
// An empty name returns baseURL untouched. sslmode=disable is added when absent.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" {
		return fallbackDatabaseURL(baseURL, databaseName)
	}

	u.Path = "/" + databaseName
	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// fallbackDatabaseURL handles inputs net/url refuses, such as key=value DSNs with a trailing path.
func fallbackDatabaseURL(baseURL, databaseName string) string {
	base, params, hasParams := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	databaseURL := fmt.Sprintf("%s/%s", base, databaseName)
	if hasParams {
		databaseURL += "?" + params
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		sep := "&"
		if !hasParams {
			sep = "?"
		}
		databaseURL += sep + "sslmode=disable"
	}
	return databaseURL
}
