package directory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workshopdir/curator/pkg/directory"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name      string
		lastName  string
		firstName string
		want      string
	}{
		{"simple", "Handley", "Jane", "handley-jane"},
		{"diacritics are dropped", "Fernández", "Rosa", "fernndez-rosa"},
		{"inner whitespace becomes hyphen", "Van Der Berg", "Anna Maria", "van-der-berg-anna-maria"},
		{"punctuation stripped", "O'Brien", "J.P.", "obrien-jp"},
		{"existing hyphen kept", "Smith-Jones", "Li", "smith-jones-li"},
		{"tabs collapse", "Lee\t\tKim", "Su", "lee-kim-su"},
		{"digits kept", "Doe2", "John", "doe2-john"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, directory.DeriveID(tt.lastName, tt.firstName))
		})
	}
}

func TestDeriveIDFromFullName(t *testing.T) {
	assert.Equal(t, "handley-jane", directory.DeriveIDFromFullName("Jane Handley"))
	assert.Equal(t, "smith-mary-ann", directory.DeriveIDFromFullName("  Mary  Ann Smith "))
	assert.Equal(t, "cher-", directory.DeriveIDFromFullName("Cher"))
}

func TestNewFaculty(t *testing.T) {
	f := directory.NewFaculty("Handley", "Jane")
	assert.Equal(t, directory.Faculty{ID: "handley-jane", FirstName: "Jane", LastName: "Handley"}, f)
	assert.Equal(t, "Jane Handley", f.FullName())
}
