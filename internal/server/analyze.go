package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pagelens/pagelens/internal/engine/llm"
	"github.com/pagelens/pagelens/internal/engine/pipeline"
	"github.com/pagelens/pagelens/internal/engine/schema"
)

// AnalyzeRequest is the POST /api/analyze body. Only URL is required;
// empty fields fall back to the server's configured defaults.
type AnalyzeRequest struct {
	URL              string `json:"url"`
	Vendor           string `json:"vendor,omitempty"`
	Model            string `json:"model,omitempty"`
	Verbosity        string `json:"verbosity,omitempty"`
	Effort           string `json:"effort,omitempty"`
	Genre            string `json:"genre,omitempty"`
	ExtraInstruction string `json:"extra_instruction,omitempty"`
}

// AnalyzeResponse carries one finished run back to the client.
type AnalyzeResponse struct {
	Result     *schema.AnalysisResult `json:"result"`
	Artifacts  *pipeline.Artifacts    `json:"artifacts,omitempty"`
	RunDir     string                 `json:"run_dir,omitempty"`
	DurationMs int64                  `json:"duration_ms"`
}

// Runner executes one capture-and-analyze run. Implementations return
// whatever response fields they produced even when the run fails, so
// clients can still locate the run journal.
type Runner interface {
	Run(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
}

func (s *Server) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	resp, err := s.runner.Run(c.Request.Context(), req)
	if err != nil {
		payload := gin.H{"error": err.Error()}
		var callErr *llm.CallError
		if errors.As(err, &callErr) {
			payload["kind"] = string(callErr.Kind)
		}
		if resp != nil && resp.RunDir != "" {
			payload["run_dir"] = resp.RunDir
		}
		c.JSON(statusFor(err), payload)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// statusFor maps the structured-call failure taxonomy onto HTTP statuses:
// transport failures read as a bad gateway, contract violations as
// unprocessable content.
func statusFor(err error) int {
	var callErr *llm.CallError
	if errors.As(err, &callErr) {
		switch callErr.Kind {
		case llm.CallFailed:
			return http.StatusBadGateway
		case llm.MissingPayload, llm.ValidationFailed:
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
