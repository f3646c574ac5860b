package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/agent"
	"github.com/AlexZinkM/yield-agent/internal/model"

	log "github.com/sirupsen/logrus"
)

// QueryAgent is the agent as used by the HTTP layer
type QueryAgent interface {
	ProcessQuery(ctx context.Context, query, threadID string) (string, error)
	Stats() model.ThreadPoolInfo
}

// AgentHandler serves agent queries and health checks
type AgentHandler struct {
	agent QueryAgent
}

// NewAgentHandler creates a new AgentHandler
func NewAgentHandler(a QueryAgent) *AgentHandler {
	return &AgentHandler{agent: a}
}

// Query handles POST /query
// @Summary      Query the yield agent
// @Description  Runs the query through the agent and returns the formatted yield answer
// @Tags         agent
// @Accept       json
// @Produce      json
// @Param        request  body      model.QueryRequest  true  "Query"
// @Success      200      {object}  model.QueryResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /query [post]
func (h *AgentHandler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, model.CodeValidation, "query must not be empty")
		return
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = agent.DefaultThreadID
	}

	start := time.Now()
	content, err := h.agent.ProcessQuery(r.Context(), req.Query, threadID)
	if err != nil {
		log.WithError(err).WithField("thread_id", threadID).Error("query failed")
		writeError(w, http.StatusInternalServerError, model.CodeInternal, "Query processing failed: "+err.Error())
		return
	}

	result, err := agent.FormatYieldResponse(content)
	if err != nil {
		log.WithError(err).WithField("thread_id", threadID).Error("unexpected agent answer")
		writeError(w, http.StatusInternalServerError, model.CodeInternal, "Query processing failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.QueryResponse{
		Response:       []model.YieldResult{result},
		ThreadID:       threadID,
		ProcessingTime: time.Since(start).Seconds(),
	})
}

// Health handles GET /health
// @Summary      Health check
// @Description  Reports service status and agent worker pool usage
// @Tags         agent
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Router       /health [get]
func (h *AgentHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:         "healthy",
		ThreadPoolInfo: h.agent.Stats(),
	})
}
