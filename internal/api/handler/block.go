package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/service"
)

type BlockHandler struct {
	agendaService *service.AgendaService
}

func NewBlockHandler(agendaService *service.AgendaService) *BlockHandler {
	return &BlockHandler{
		agendaService: agendaService,
	}
}

// Create adds a weekly recurring block
// POST /api/v1/blocks
func (h *BlockHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	block, err := h.agendaService.CreateBlock(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "block created", block)
}

// List returns all blocks, active and paused
// GET /api/v1/blocks
func (h *BlockHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	blocks, err := h.agendaService.ListBlocks(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, blocks)
}

// Update edits a block or toggles it
// PUT /api/v1/blocks/:id
func (h *BlockHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid block id")
		return
	}

	var req dto.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	block, err := h.agendaService.UpdateBlock(userID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidTimeRange):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "block updated", block)
}

// Delete removes a block
// DELETE /api/v1/blocks/:id
func (h *BlockHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid block id")
		return
	}

	if err := h.agendaService.DeleteBlock(userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "block deleted", nil)
}
