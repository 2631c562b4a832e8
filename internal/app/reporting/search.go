package reporting

import (
	"strings"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
)

// SearchFields are the user text fields a search term is matched against.
// A record matches when any one of them contains the term, ignoring case.
var SearchFields = []UserField{
	storedStudentName,
	storedStudentID,
	storedMobileNumber,
	externalEmail,
	externalDisplayName,
}

// MatchesSearch reports whether u matches a search term. An empty term matches everything.
func MatchesSearch(u *models.User, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if u == nil {
		return false
	}
	for _, field := range SearchFields {
		if strings.Contains(strings.ToLower(field(u)), term) {
			return true
		}
	}
	return false
}
