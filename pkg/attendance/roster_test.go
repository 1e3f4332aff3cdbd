package attendance_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/workshopdir/curator/pkg/attendance"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/identity"
)

const header = `"Last Name","First Name","Institution","2018","2019","2020","2021"` + "\n"

func TestParseRoster_ConcreteRow(t *testing.T) {
	input := header + `"Handely","Jane",,,"x",,"x"` + "\n"

	roster, err := attendance.ParseRoster(strings.NewReader(input), "wog",
		attendance.WithCorrections(identity.DefaultOverrides().Corrections))
	require.NoError(t, err)

	assert.Equal(t, []directory.Faculty{{ID: "handley-jane", FirstName: "Jane", LastName: "Handley"}}, roster.Faculty)
	assert.Equal(t, []directory.Participation{
		{FacultyID: "handley-jane", WorkshopID: "wog", Year: 2019, Role: "faculty"},
		{FacultyID: "handley-jane", WorkshopID: "wog", Year: 2021, Role: "faculty"},
	}, roster.Participations)
	assert.Equal(t, []int{2018, 2019, 2020, 2021}, roster.Years)
	assert.Equal(t, 1, roster.Corrected)
}

func TestParseRoster_SkipsRowsWithoutNames(t *testing.T) {
	input := header +
		`"","Jane",,"x",,,` + "\n" +
		`"Smith","",,"x",,,` + "\n" +
		`"  ","  ",,"x",,,` + "\n" +
		`"Doe","John",,"X",,,` + "\n"

	roster, err := attendance.ParseRoster(strings.NewReader(input), "wog")
	require.NoError(t, err)

	require.Len(t, roster.Faculty, 1)
	assert.Equal(t, "doe-john", roster.Faculty[0].ID)
	require.Len(t, roster.Participations, 1)
	assert.Equal(t, 2018, roster.Participations[0].Year)
	assert.Len(t, roster.Skipped, 3)
	for _, s := range roster.Skipped {
		assert.Equal(t, "missing name", s.Reason)
	}
}

func TestParseRoster_RepeatedPersonCollapses(t *testing.T) {
	input := header +
		`"Doe","John",,"x",,,` + "\n" +
		`"Doe","John",,"x"," x ",,` + "\n"

	roster, err := attendance.ParseRoster(strings.NewReader(input), "cg")
	require.NoError(t, err)
	require.Len(t, roster.Faculty, 1)
	assert.Len(t, roster.Participations, 2)
}

func TestParseRoster_ShortRowsArePadded(t *testing.T) {
	input := header + `"Doe","John",,"x"` + "\n"

	roster, err := attendance.ParseRoster(strings.NewReader(input), "wog")
	require.NoError(t, err)
	require.Len(t, roster.Participations, 1)
	assert.Equal(t, 2018, roster.Participations[0].Year)
}

func TestParseRoster_IgnoresNonMarkerCells(t *testing.T) {
	input := header + `"Doe","John","x","yes","✓","xx","x"` + "\n"

	roster, err := attendance.ParseRoster(strings.NewReader(input), "wog")
	require.NoError(t, err)
	require.Len(t, roster.Participations, 1)
	assert.Equal(t, 2021, roster.Participations[0].Year)
}

func TestParseRoster_Empty(t *testing.T) {
	_, err := attendance.ParseRoster(strings.NewReader(""), "wog", attendance.WithSource("empty.csv"))
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "empty.csv", pe.File)
}

func TestParseRoster_Encodings(t *testing.T) {
	input := header + `"Fernández","Rosa",,"x",,,` + "\n"

	latin1, err := charmap.ISO8859_1.NewEncoder().String(input)
	require.NoError(t, err)
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(input)
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		encoding string
	}{
		{"utf-8", []byte(input), "utf-8"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, input...), "utf-8-bom"},
		{"latin-1", []byte(latin1), "latin-1"},
		{"utf-16le", []byte(utf16), "utf-16le"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster, err := attendance.ParseRoster(bytes.NewReader(tt.data), "wog")
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, roster.Encoding)
			require.Len(t, roster.Faculty, 1)
			assert.Equal(t, "Fernández", roster.Faculty[0].LastName)
			assert.Equal(t, "fernndez-rosa", roster.Faculty[0].ID)
		})
	}
}

func TestYearColumns(t *testing.T) {
	cols := attendance.YearColumns([]string{"Last", "First", "2000", " 2001 ", "2098", "2099", "Notes", "20x1"})
	assert.Equal(t, []attendance.YearColumn{{Index: 3, Year: 2001}, {Index: 4, Year: 2098}}, cols)
}
