package reporting

import (
	"strings"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
)

// NotAvailable is shown when no source in a fallback chain has a value
const NotAvailable = "N/A"

// UserField reads one display source from a user record
type UserField func(u *models.User) string

// Identity-provider values come before self-reported profile values.
var (
	NameChain       = []UserField{externalDisplayName, storedStudentName}
	IdentifierChain = []UserField{storedStudentID}
	ContactChain    = []UserField{externalEmail, storedMobileNumber}
)

// FirstNonEmpty returns the first accessor value that is not blank, or NotAvailable.
// A nil user yields NotAvailable for every chain.
func FirstNonEmpty(u *models.User, chain []UserField) string {
	if u == nil {
		return NotAvailable
	}
	for _, field := range chain {
		if v := strings.TrimSpace(field(u)); v != "" {
			return v
		}
	}
	return NotAvailable
}

func externalDisplayName(u *models.User) string { return deref(u.ExternalAuthDisplayName) }
func externalEmail(u *models.User) string       { return deref(u.ExternalAuthEmail) }
func storedStudentName(u *models.User) string   { return u.StudentName }
func storedStudentID(u *models.User) string     { return u.StudentID }
func storedMobileNumber(u *models.User) string  { return u.MobileNumber }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
