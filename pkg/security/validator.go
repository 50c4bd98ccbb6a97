package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSearchQueryLength is the maximum number of runes accepted in a search query
const MaxSearchQueryLength = 100

var (
	ErrSearchQueryTooLong = errors.New("search query too long")
	ErrSearchQueryInvalid = errors.New("search query contains invalid characters")
)

// ValidateSearchQuery trims the query and rejects anything longer than
// MaxSearchQueryLength or containing characters outside the allowed set.
// An empty query is valid and means "no filter".
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrSearchQueryTooLong
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrSearchQueryInvalid
		}
	}

	return query, nil
}

// isValidSearchChar allows letters, digits, spaces and the punctuation found in names and emails
func isValidSearchChar(char rune) bool {
	if unicode.IsLetter(char) || unicode.IsNumber(char) {
		return true
	}
	switch char {
	case ' ', '-', '_', '.', '@', '+', '\'', '%':
		return true
	}
	return false
}

// EscapeLike escapes LIKE wildcards so the query matches literally.
// The result is meant for a pattern declared with ESCAPE '\'.
func EscapeLike(query string) string {
	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	return strings.ReplaceAll(query, "_", `\_`)
}

// EscapeRegex quotes the query for a literal regular-expression match.
func EscapeRegex(query string) string {
	return regexp.QuoteMeta(query)
}
