package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/http/response"
	"github.com/yungbote/games-aggregator/internal/jobs"
	"github.com/yungbote/games-aggregator/internal/jobs/pipeline/aggregate_source"
	jobreconcile "github.com/yungbote/games-aggregator/internal/jobs/pipeline/reconcile"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
)

type JobHandler struct {
	jobs jobs.Service
}

func NewJobHandler(jobs jobs.Service) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.Get(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if job == nil {
		response.RespondErr(c, fmt.Errorf("job %s: %w", jobID, pkgerrors.ErrNotFound))
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /jobs?type=aggregate_source&limit=20
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be within 1..500"))
			return
		}
		limit = n
	}
	out, err := h.jobs.ListRecent(dbctx.Context{Ctx: c.Request.Context()}, c.Query("type"), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": out})
}

type aggregateRequest struct {
	Sources []string `json:"sources"`
	Chunk   int      `json:"chunk"`
}

// POST /jobs/aggregate
// Enqueues one aggregate_source job per source; empty sources means all of them.
func (h *JobHandler) EnqueueAggregate(c *gin.Context) {
	var req aggregateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	if req.Chunk < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_chunk", fmt.Errorf("chunk must be positive"))
		return
	}
	kinds, err := parseKinds(req.Sources, sources.Kinds())
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	queued := make([]any, 0, len(kinds))
	for _, k := range kinds {
		job, err := h.jobs.Enqueue(dbc, aggregate_source.JobType, aggregate_source.Payload{Source: string(k), Chunk: req.Chunk})
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		queued = append(queued, job)
	}
	c.JSON(http.StatusAccepted, gin.H{"jobs": queued})
}

// POST /jobs/reconcile
func (h *JobHandler) EnqueueReconcile(c *gin.Context) {
	var req jobreconcile.Payload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	switch req.Operation {
	case jobreconcile.OpDedupeSlugs, jobreconcile.OpMismatchedSlugs:
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_operation", fmt.Errorf("unknown operation %q", req.Operation))
		return
	}
	job, err := h.jobs.EnqueueIfIdle(dbctx.Context{Ctx: c.Request.Context()}, jobreconcile.JobType, req)
	if errors.Is(err, jobs.ErrAlreadyRunnable) {
		response.RespondError(c, http.StatusConflict, "already_running", err)
		return
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}
