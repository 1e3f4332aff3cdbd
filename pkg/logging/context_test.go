package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workshopdir/curator/pkg/logging"
)

func TestContextTags(t *testing.T) {
	tests := []struct {
		name string
		tag  func(context.Context) context.Context
		want string
	}{
		{"run id", func(ctx context.Context) context.Context { return logging.WithRunID(ctx, "run-42") }, `"run_id":"run-42"`},
		{"operation", func(ctx context.Context) context.Context { return logging.WithOperation(ctx, "ingest") }, `"operation":"ingest"`},
		{"faculty", func(ctx context.Context) context.Context { return logging.WithFaculty(ctx, "handley-jane") }, `"faculty_id":"handley-jane"`},
		{"workshop", func(ctx context.Context) context.Context { return logging.WithWorkshop(ctx, "wog") }, `"workshop_id":"wog"`},
		{"file", func(ctx context.Context) context.Context { return logging.WithFile(ctx, "rosters/wog.csv") }, `"file":"rosters/wog.csv"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := logging.NewTestLogger(t)
			ctx := tt.tag(logging.WithLogger(context.Background(), tl.Logger))
			logging.FromContext(ctx).Info().Msg("tagged")
			tl.AssertContains(t, tt.want, `"message":"tagged"`)
		})
	}
}

func TestContextTags_Chain(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithWorkshop(ctx, "wog")
	ctx = logging.WithFile(ctx, "rosters/wog.csv")

	logging.FromContext(ctx).Info().Msg("parsed")
	assert.True(t, tl.Contains(`"workshop_id":"wog"`, `"file":"rosters/wog.csv"`))

	// the parent context is untouched
	tl.Buffer.Reset()
	logging.FromContext(logging.WithLogger(context.Background(), tl.Logger)).Info().Msg("plain")
	tl.AssertNotContains(t, "workshop_id")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is exercised on purpose
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Same(t, logging.Default(), logging.FromContext(logging.WithLogger(context.Background(), nil)))
}
