package directory

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidIDChar = regexp.MustCompile(`[^a-z0-9-]`)
)

// Faculty is one person in the directory.
type Faculty struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
}

// NewFaculty builds a faculty record with its derived id.
func NewFaculty(lastName, firstName string) Faculty {
	return Faculty{
		ID:        DeriveID(lastName, firstName),
		FirstName: firstName,
		LastName:  lastName,
	}
}

// FullName returns "First Last".
func (f Faculty) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// DeriveID returns the identity key for a name: lowercase last and first
// name joined by a hyphen, whitespace runs mapped to hyphens and every
// character outside [a-z0-9-] removed.
func DeriveID(lastName, firstName string) string {
	id := strings.ToLower(lastName) + "-" + strings.ToLower(firstName)
	id = whitespaceRun.ReplaceAllString(id, "-")
	return invalidIDChar.ReplaceAllString(id, "")
}

// DeriveIDFromFullName splits "First Middle Last" on the last space and
// derives the key from ("Last", "First Middle").
func DeriveIDFromFullName(fullName string) string {
	fullName = strings.TrimSpace(whitespaceRun.ReplaceAllString(fullName, " "))
	i := strings.LastIndex(fullName, " ")
	if i < 0 {
		return DeriveID(fullName, "")
	}
	return DeriveID(fullName[i+1:], fullName[:i])
}
