package share

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/internal/cmd/application"
	"github.com/workshopdir/curator/pkg/urlstate"
)

func run(t *testing.T, args ...string) Link {
	t.Helper()
	cmd := NewCommand(&application.Mock{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	var link Link
	require.NoError(t, json.Unmarshal(out.Bytes(), &link))
	return link
}

func TestShare(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		url   string
		state urlstate.State
	}{
		{
			name: "defaults encode to the bare base",
			url:  "https://dashboard.example.org/",
		},
		{
			name:  "flags and filters",
			args:  []string{"--map", "--analytics", "--workshop", "wog", "--year", "2023"},
			url:   "https://dashboard.example.org/?analytics=true&map=true&workshop=wog&year=2023",
			state: urlstate.State{Map: true, Analytics: true, Workshop: "wog", Year: 2023},
		},
		{
			name:  "custom base drops its fragment and query",
			args:  []string{"--base", "https://other.example.org/dash?x=1#top", "--timeline"},
			url:   "https://other.example.org/dash?timeline=true",
			state: urlstate.State{Timeline: true},
		},
		{
			name:  "start from an existing link",
			args:  []string{"--from", "https://anywhere.example.org/?map=true&year=2019&historical=yes", "--map=false", "--comparisons"},
			url:   "https://dashboard.example.org/?comparisons=true&year=2019",
			state: urlstate.State{Comparisons: true, Year: 2019},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := run(t, tt.args...)
			assert.Equal(t, tt.url, link.URL)
			assert.Equal(t, tt.state, link.State)
		})
	}
}
