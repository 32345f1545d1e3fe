package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/http/response"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
	"github.com/yungbote/games-aggregator/internal/services"
)

const maxDryRunLimit = 5000

type DryRunHandler struct {
	catalog services.CatalogService
	enabled []sources.Kind
}

// NewDryRunHandler previews the given catalog. enabled is the source set a request without
// sources covers.
func NewDryRunHandler(catalog services.CatalogService, enabled []sources.Kind) *DryRunHandler {
	return &DryRunHandler{catalog: catalog, enabled: enabled}
}

type dryRunRequest struct {
	Sources []string `json:"sources"`
	Limit   int      `json:"limit"`
}

// POST /dry-run
// Body: {"sources": ["steam", "gog"], "limit": 200}. Empty sources means every enabled one.
func (h *DryRunHandler) DryRun(c *gin.Context) {
	var req dryRunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErr(c, fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument))
			return
		}
	}
	if req.Limit < 0 || req.Limit > maxDryRunLimit {
		response.RespondErr(c, fmt.Errorf("limit must be within 0..%d: %w", maxDryRunLimit, pkgerrors.ErrInvalidArgument))
		return
	}
	kinds, err := parseKinds(req.Sources, h.enabled)
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	reports := make([]ingest.DryRunReport, 0, len(kinds))
	for _, k := range kinds {
		rep, err := h.catalog.DryRun(c.Request.Context(), k, req.Limit)
		if err != nil {
			response.RespondErr(c, fmt.Errorf("dry run %s: %w", k, err))
			return
		}
		reports = append(reports, rep)
	}
	response.RespondOK(c, gin.H{"reports": reports})
}

func parseKinds(names []string, enabled []sources.Kind) ([]sources.Kind, error) {
	if len(names) == 0 {
		if len(enabled) == 0 {
			return nil, fmt.Errorf("no sources enabled: %w", pkgerrors.ErrInvalidArgument)
		}
		return enabled, nil
	}
	out := make([]sources.Kind, 0, len(names))
	seen := map[sources.Kind]bool{}
	for _, n := range names {
		k, err := sources.ParseKind(n)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument)
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}
