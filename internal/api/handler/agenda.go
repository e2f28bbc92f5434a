package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/service"
)

type AgendaHandler struct {
	agendaService *service.AgendaService
}

func NewAgendaHandler(agendaService *service.AgendaService) *AgendaHandler {
	return &AgendaHandler{
		agendaService: agendaService,
	}
}

// Day returns one fully placed agenda day
// GET /api/v1/agenda/day?date=2025-03-10
func (h *AgendaHandler) Day(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	date := c.Query("date")
	if date == "" {
		response.ParamError(c, "missing date")
		return
	}

	layout, err := h.agendaService.DayLayout(userID, date, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, layout)
}

// Week returns seven placed days starting at start_date
// GET /api/v1/agenda/week?start_date=2025-03-10
func (h *AgendaHandler) Week(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	startDate := c.Query("start_date")
	if startDate == "" {
		response.ParamError(c, "missing start_date")
		return
	}

	layout, err := h.agendaService.WeekLayout(userID, startDate, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, layout)
}

// CreateAppointment books an appointment and schedules its reminders
// POST /api/v1/appointments
func (h *AgendaHandler) CreateAppointment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	appointment, err := h.agendaService.CreateAppointment(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTimeRange):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrPatientNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "appointment created", appointment)
}

// GetAppointment returns one appointment
// GET /api/v1/appointments/:id
func (h *AgendaHandler) GetAppointment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid appointment id")
		return
	}

	appointment, err := h.agendaService.GetAppointment(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, appointment)
}

// UpdateAppointment edits or reschedules an appointment
// PUT /api/v1/appointments/:id
func (h *AgendaHandler) UpdateAppointment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid appointment id")
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	appointment, err := h.agendaService.UpdateAppointment(userID, id, &req)
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

	response.SuccessWithMessage(c, "appointment updated", appointment)
}

// DeleteAppointment cancels an appointment and its pending reminders
// DELETE /api/v1/appointments/:id
func (h *AgendaHandler) DeleteAppointment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid appointment id")
		return
	}

	if err := h.agendaService.DeleteAppointment(userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "appointment cancelled", nil)
}

// CreateCommitment books a personal commitment
// POST /api/v1/commitments
func (h *AgendaHandler) CreateCommitment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	commitment, err := h.agendaService.CreateCommitment(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "commitment created", commitment)
}

// DeleteCommitment removes a personal commitment
// DELETE /api/v1/commitments/:id
func (h *AgendaHandler) DeleteCommitment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid commitment id")
		return
	}

	if err := h.agendaService.DeleteCommitment(userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "commitment deleted", nil)
}
