package updates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
)

const sheet = `Full Name,Title,Affiliation,Department,Lab Website,ORCID,Research Areas,Bio
Jane Handley,Professor,University of Oregon,Biology,https://handleylab.org,https://orcid.org/0000-0002-1825-0097,"Population Genetics; Ancient DNA",Works on ancient DNA.
Rosa Fernández,,UNAM,,,,,
Nobody Known,,,,,,,
,,ignored,,,,,
Mary Ann Smith,Lecturer,,,,1234,,
`

func TestParse(t *testing.T) {
	subs, err := Parse(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, subs, 4)

	assert.Equal(t, Submission{
		Row:           2,
		FullName:      "Jane Handley",
		Title:         "Professor",
		Affiliation:   "University of Oregon",
		Department:    "Biology",
		LabWebsite:    "https://handleylab.org",
		ORCID:         "0000-0002-1825-0097",
		ResearchAreas: []string{"Population Genetics", "Ancient DNA"},
		Bio:           "Works on ancient DNA.",
	}, subs[0])
	assert.Equal(t, 6, subs[3].Row)
}

func TestParse_HeaderCaseInsensitive(t *testing.T) {
	subs, err := Parse(strings.NewReader("FULL NAME,orcid\nJane Handley,0000-0002-1825-0097\n"))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "0000-0002-1825-0097", subs[0].ORCID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing name column", "Title,Bio\nProfessor,x\n"},
		{"bad quoting", "Full Name,Bio\n\"Jane Handley,unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			var pe *errors.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestResolve(t *testing.T) {
	subs, err := Parse(strings.NewReader(sheet))
	require.NoError(t, err)

	faculty := []directory.Faculty{
		directory.NewFaculty("Handley", "Jane"),
		{ID: "fernandez-rosa", FirstName: "Rosa", LastName: "Fernández"},
		directory.NewFaculty("Smith", "Mary Ann"),
	}

	res := Resolve(subs, faculty)

	assert.Equal(t, []string{"fernandez-rosa", "handley-jane", "smith-mary-ann"}, res.MatchedIDs())
	assert.Equal(t, []Unmatched{{Row: 4, FullName: "Nobody Known"}}, res.Unmatched)
	assert.Equal(t, []string{"Mary Ann Smith: 1234"}, res.Invalid)

	jane := res.Batch["handley-jane"]
	assert.Equal(t, enrichment.ConfidenceHigh, jane.Confidence)
	assert.Equal(t, constants.SourceFacultySubmitted, jane.Source)
	assert.Equal(t, constants.SourceFacultySubmitted, *jane.Profile.Source)
	assert.Equal(t, "0000-0002-1825-0097", *jane.Academic.ORCID)

	rosa := res.Batch["fernandez-rosa"]
	assert.Nil(t, rosa.Professional.Title)
	assert.Equal(t, "UNAM", *rosa.Professional.Affiliation)
	assert.Nil(t, rosa.Profile)

	assert.Nil(t, res.Batch["smith-mary-ann"].Academic.ORCID)
}

func TestResolve_AppliesAsHighConfidence(t *testing.T) {
	subs, err := Parse(strings.NewReader(sheet))
	require.NoError(t, err)
	res := Resolve(subs, []directory.Faculty{directory.NewFaculty("Handley", "Jane")})

	table := enrichment.Table{"handley-jane": {ID: "handley-jane", Enrichment: enrichment.Details{Confidence: enrichment.ConfidenceLow}}}
	report := enrichment.Apply(table, res.Batch, time.Now())

	assert.Equal(t, 1, report.Updated)
	d := table["handley-jane"].Enrichment
	assert.Equal(t, enrichment.ConfidenceHigh, d.Confidence)
	assert.Equal(t, []string{"population genetics", "ancient dna"}, d.Academic.ResearchAreas)
	assert.Equal(t, "Works on ancient DNA.", d.Profile.ShortBio)
}
