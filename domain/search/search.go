package search

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query represents the structured parameters of a chat search.
// It decouples the raw input typed by the user from what the index needs.
type Query struct {
	RawInput       string // The original input from the user
	Terms          string // The actual text to search in the index
	OrganizationID string // Mandatory scope of the search
	With           string // Optional participant filter
	Limit          int    // Number of results
}

// NewSearchQuery parses a raw string to extract command-line style arguments.
// Example: /find practice moved --with 6a1f... --limit 5
func NewSearchQuery(organizationID, input string) *Query {
	query := &Query{
		RawInput:       input,
		OrganizationID: organizationID,
		Limit:          DefaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "with":
				query.With = val
			case "limit":
				if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
					query.Limit = min(limit, MaxLimit)
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag nor a command, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}

func (q *Query) IsEmpty() bool {
	return strings.TrimSpace(q.Terms) == ""
}
