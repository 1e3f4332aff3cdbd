package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/identity"
)

func participations(id string, years ...int) []directory.Participation {
	out := make([]directory.Participation, 0, len(years))
	for _, y := range years {
		out = append(out, directory.Participation{FacultyID: id, WorkshopID: "wog", Year: y, Role: "faculty"})
	}
	return out
}

func TestMergeDuplicate_CollapsesAccentVariants(t *testing.T) {
	ps := append(participations("fernandez-rosa", 2018, 2019, 2020), participations("fernndez-rosa", 2018, 2019, 2020)...)
	set := directory.NewSet([]directory.Faculty{
		{ID: "fernandez-rosa", FirstName: "Rosa", LastName: "Fernandez"},
		{ID: "fernndez-rosa", FirstName: "Rosa", LastName: "Fernández"},
	}, ps)

	report, err := identity.MergeDuplicate(set, identity.Fix{
		CanonicalID: "fernandez-rosa",
		ObsoleteID:  "fernndez-rosa",
		FirstName:   "Rosa",
		LastName:    "Fernández",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Repointed)
	assert.Equal(t, 3, report.DuplicatesDropped)
	assert.True(t, report.ObsoleteRemoved)

	require.Equal(t, 1, set.Len())
	f, ok := set.Get("fernandez-rosa")
	require.True(t, ok)
	assert.Equal(t, directory.Faculty{ID: "fernandez-rosa", FirstName: "Rosa", LastName: "Fernández"}, f)

	got := set.Participations()
	require.Len(t, got, 3)
	for _, p := range got {
		assert.Equal(t, "fernandez-rosa", p.FacultyID)
	}
}

func TestMergeDuplicate_RenamesWhenOnlyObsoleteExists(t *testing.T) {
	set := directory.NewSet(
		[]directory.Faculty{{ID: "fernndez-rosa", FirstName: "Rosa", LastName: "Fernández"}},
		participations("fernndez-rosa", 2021),
	)

	report, err := identity.MergeDuplicate(set, identity.Fix{CanonicalID: "fernandez-rosa", ObsoleteID: "fernndez-rosa"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repointed)

	f, ok := set.Get("fernandez-rosa")
	require.True(t, ok)
	assert.Equal(t, "Fernández", f.LastName)
	assert.False(t, set.Exists("fernndez-rosa"))
}

func TestMergeDuplicate_Errors(t *testing.T) {
	set := directory.NewSet(nil, nil)

	_, err := identity.MergeDuplicate(set, identity.Fix{CanonicalID: "a", ObsoleteID: "b"})
	assert.True(t, errors.IsNotFound(err))

	_, err = identity.MergeDuplicate(set, identity.Fix{CanonicalID: "a", ObsoleteID: "a"})
	assert.True(t, errors.IsValidationError(err))

	_, err = identity.MergeDuplicate(set, identity.Fix{ObsoleteID: "a"})
	assert.True(t, errors.IsValidationError(err))
}

func TestApply_SkipsMissingPairs(t *testing.T) {
	set := directory.NewSet([]directory.Faculty{{ID: "x-y"}, {ID: "xx-y"}}, nil)

	reports, err := identity.Apply(set, []identity.Fix{
		{CanonicalID: "nobody", ObsoleteID: "noone"},
		{CanonicalID: "x-y", ObsoleteID: "xx-y"},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Skipped)
	assert.True(t, reports[1].ObsoleteRemoved)
	assert.Equal(t, 1, set.Len())
}
