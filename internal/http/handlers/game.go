package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/http/response"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
	"github.com/yungbote/games-aggregator/internal/services"
)

type GameHandler struct {
	catalog services.CatalogService
}

func NewGameHandler(catalog services.CatalogService) *GameHandler {
	return &GameHandler{catalog: catalog}
}

// GET /games/:slug
func (h *GameHandler) GetBySlug(c *gin.Context) {
	view, err := h.catalog.GetView(dbctx.Context{Ctx: c.Request.Context()}, c.Param("slug"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"game": view})
}

// GET /sources/:kind/:id/game
func (h *GameHandler) GetBySource(c *gin.Context) {
	kind, err := sources.ParseKind(c.Param("kind"))
	if err != nil {
		response.RespondErr(c, fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument))
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondErr(c, fmt.Errorf("source id %q: %w", c.Param("id"), pkgerrors.ErrInvalidArgument))
		return
	}
	view, err := h.catalog.GetBySource(dbctx.Context{Ctx: c.Request.Context()}, kind, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"game": view})
}

// GET /stats
func (h *GameHandler) Stats(c *gin.Context) {
	n, err := h.catalog.Count(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"games": n})
}
