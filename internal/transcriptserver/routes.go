package transcriptserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/batch"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// transcriptRequest is the REST request body. "videos"/"language" are accepted
// as aliases of "videoIds"/"languageCode".
type transcriptRequest struct {
	VideoIDs     []string `json:"videoIds"`
	Videos       []string `json:"videos"`
	LanguageCode string   `json:"languageCode"`
	Language     string   `json:"language"`
	Archive      bool     `json:"archive"`
	Format       string   `json:"format"`
}

func (r transcriptRequest) batch() engine.BatchRequest {
	return engine.BatchRequest{
		Videos:   toolutil.CleanRefs(toolutil.FirstList(r.VideoIDs, r.Videos)),
		Language: toolutil.FirstString(r.LanguageCode, r.Language),
		Archive:  r.Archive,
		Format:   r.Format,
	}
}

// NewHandler returns the REST API wrapped in CORS handling.
func NewHandler(runner *batch.Runner, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Content-Disposition"},
	})
	return c.Handler(NewRouter(runner))
}

// NewRouter registers the transcript routes on a new gin engine.
func NewRouter(runner *batch.Runner) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestID(), requestLogger())
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	h := &handlers{runner: runner}
	api := r.Group("/api/transcript")
	{
		api.POST("", h.transcripts)
		api.POST("/archive", h.archive)
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, engine.FormatMetrics())
	})
	return r
}

type handlers struct {
	runner *batch.Runner
}

// bind decodes the body. On failure it writes a 400 and returns false.
// Batch limits are checked by Runner.Run, which also counts the request.
func (h *handlers) bind(c *gin.Context) (engine.BatchRequest, bool) {
	var body transcriptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "request body must be JSON with a videoIds list",
			"results": []engine.TranscriptResult{},
		})
		return engine.BatchRequest{}, false
	}
	return body.batch(), true
}

// transcripts handles POST /api/transcript.
func (h *handlers) transcripts(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	out, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		h.runError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// archive handles POST /api/transcript/archive: the zip itself as the body.
func (h *handlers) archive(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	req.Archive = false
	out, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		h.runError(c, err)
		return
	}
	if !anyOK(out.Results) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "no transcripts could be fetched",
			"results": out.Results,
		})
		return
	}
	data, err := engine.BuildArchive(out.Results)
	if err != nil {
		slog.Error("archive build failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build archive"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", engine.ArchiveName))
	c.Data(http.StatusOK, "application/zip", data)
}

func (h *handlers) runError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrMissingVideos) || errors.Is(err, engine.ErrBatchTooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "results": []engine.TranscriptResult{}})
		return
	}
	slog.Error("batch failed", slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "batch failed"})
}

func anyOK(results []engine.TranscriptResult) bool {
	for _, r := range results {
		if r.OK() {
			return true
		}
	}
	return false
}
