package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseYearMonth extracts year and month query parameters, defaulting to the
// current month. The second return is false when a value is out of range.
func parseYearMonth(r *http.Request) (int, time.Month, bool) {
	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = m
	}

	if year < 1970 || year > 9999 || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// hasWindowParams reports whether the request asked for a month filter.
func hasWindowParams(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("year") != "" || q.Get("month") != ""
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns a UTC timestamp.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func transactionTypeFromString(s string) (core.TransactionType, bool) {
	t := core.TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}
