package transcriptserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/batch"
)

func TestRunTranscripts(t *testing.T) {
	engine.Init(engine.Config{})
	runner := batch.NewRunner(stubSource{}, stubSource{})

	out, err := runTranscripts(context.Background(), runner, TranscriptsInput{
		Videos: []string{" " + okID + " ", missingID},
		Format: "md",
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "Chan_Talk_"+okID+".md", *out.Results[0].Filename)
	assert.Equal(t, "video not found", *out.Results[1].Error)
}

func TestRunTranscripts_EmptyList(t *testing.T) {
	engine.Init(engine.Config{})
	runner := batch.NewRunner(stubSource{}, stubSource{})

	out, err := runTranscripts(context.Background(), runner, TranscriptsInput{Videos: []string{}})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
}

func TestRunTranscripts_Rejected(t *testing.T) {
	engine.Init(engine.Config{})
	runner := batch.NewRunner(stubSource{}, stubSource{})

	_, err := runTranscripts(context.Background(), runner, TranscriptsInput{})
	assert.ErrorIs(t, err, engine.ErrMissingVideos)

	videos := make([]string, 11)
	for i := range videos {
		videos[i] = okID
	}
	_, err = runTranscripts(context.Background(), runner, TranscriptsInput{Videos: videos})
	assert.ErrorIs(t, err, engine.ErrBatchTooLarge)
}
