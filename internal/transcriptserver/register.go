package transcriptserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/batch"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// TranscriptsInput is the youtube_transcripts tool input.
type TranscriptsInput struct {
	Videos   []string `json:"videos" jsonschema:"YouTube video URLs or 11-character video IDs (at most 10)"`
	Language string   `json:"language,omitempty" jsonschema:"Caption language code, e.g. en, es, pt-BR (default: en)"`
	Archive  bool     `json:"archive,omitempty" jsonschema:"Also return a base64 zip of all successful transcripts"`
	Format   string   `json:"format,omitempty" jsonschema:"Output file format: txt (default) or md"`
}

// RegisterTools registers the transcript tools on the given MCP server:
// youtube_transcripts.
func RegisterTools(server *mcp.Server, runner *batch.Runner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcripts",
		Description: "Fetch plain-text transcripts for up to 10 YouTube videos. Returns one record per input in input order with id, filename, content and error. Failed videos carry an error message and do not affect the others. Optionally bundles all successful transcripts into a base64 zip archive.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TranscriptsInput) (*mcp.CallToolResult, engine.BatchResponse, error) {
		out, err := runTranscripts(ctx, runner, input)
		return nil, out, err
	})
}

func runTranscripts(ctx context.Context, runner *batch.Runner, input TranscriptsInput) (engine.BatchResponse, error) {
	out, err := runner.Run(ctx, engine.BatchRequest{
		Videos:   toolutil.CleanRefs(input.Videos),
		Language: toolutil.FirstString(input.Language),
		Archive:  input.Archive,
		Format:   input.Format,
	})
	if err != nil {
		return engine.BatchResponse{}, fmt.Errorf("youtube_transcripts: %w", err)
	}
	return out, nil
}
