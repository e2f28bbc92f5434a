package handler

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/service"
)

type PatientHandler struct {
	patientService *service.PatientService
	importService  *service.ImportService
}

func NewPatientHandler(patientService *service.PatientService, importService *service.ImportService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		importService:  importService,
	}
}

// Create registers a new patient
// POST /api/v1/patients
func (h *PatientHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	patient, err := h.patientService.Create(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "patient created", patient)
}

// List returns patients with search and pagination
// GET /api/v1/patients?search=ana&page=1&page_size=20
func (h *PatientHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ListPatientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	patients, total, err := h.patientService.List(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, patients)
}

// Get returns one patient
// GET /api/v1/patients/:id
func (h *PatientHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid patient id")
		return
	}

	patient, err := h.patientService.Get(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, patient)
}

// Update edits patient details
// PUT /api/v1/patients/:id
func (h *PatientHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid patient id")
		return
	}

	var req dto.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	patient, err := h.patientService.Update(userID, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "patient updated", patient)
}

// Delete removes a patient
// DELETE /api/v1/patients/:id
func (h *PatientHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid patient id")
		return
	}

	if err := h.patientService.Delete(userID, id); err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "patient deleted", nil)
}

// History lists the patient's past and future appointments
// GET /api/v1/patients/:id/history
func (h *PatientHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid patient id")
		return
	}

	appointments, err := h.patientService.History(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, appointments)
}

// UploadPhoto stores a profile photo
// POST /api/v1/patients/:id/photo
func (h *PatientHandler) UploadPhoto(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid patient id")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "missing file")
		return
	}
	if file.Size > 5*1024*1024 {
		response.ParamError(c, "file exceeds 5MB")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		response.ParamError(c, "only jpg/png/webp images allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.ServerError(c, "failed to read file")
		return
	}

	photoURL, err := h.patientService.UploadPhoto(userID, id, data, filepath.Ext(file.Filename))
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "upload failed")
		return
	}

	response.SuccessWithMessage(c, "photo updated", gin.H{
		"photo_url": photoURL,
	})
}

// Import ingests a CSV of contacts
// POST /api/v1/patients/import
func (h *PatientHandler) Import(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "missing file")
		return
	}
	if file.Size > 10*1024*1024 {
		response.ParamError(c, "file exceeds 10MB")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "failed to read file")
		return
	}
	defer f.Close()

	result, err := h.importService.ImportCSV(userID, f)
	if err != nil {
		response.ServerError(c, "import failed")
		return
	}

	response.SuccessWithMessage(c, "import finished", result)
}
