package service

import (
	"strings"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/oss"
	"github.com/agendahof/agendahof-server/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type PatientService struct {
	patientRepo     *repository.PatientRepository
	appointmentRepo *repository.AppointmentRepository
	ossClient       *oss.Client
	cfg             *config.Config
}

func NewPatientService(
	patientRepo *repository.PatientRepository,
	appointmentRepo *repository.AppointmentRepository,
	ossClient *oss.Client,
	cfg *config.Config,
) *PatientService {
	return &PatientService{
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		ossClient:       ossClient,
		cfg:             cfg,
	}
}

func (s *PatientService) Create(userID int64, req *dto.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		UserID: userID,
		Name:   req.Name,
		Phone:  normalizePhone(req.Phone),
		Email:  req.Email,
		Notes:  req.Notes,
		Source: "manual",
	}

	if req.BirthDate != "" {
		birth, err := time.ParseInLocation(dateLayout, req.BirthDate, time.Local)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		patient.BirthDate = &birth
	}

	if err := s.patientRepo.Create(patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) Get(userID, id int64) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByID(userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) List(userID int64, req *dto.ListPatientsRequest) ([]model.Patient, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return s.patientRepo.List(userID, req.Search, page, pageSize)
}

func (s *PatientService) Update(userID, id int64, req *dto.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByID(userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Phone != nil {
		patient.Phone = normalizePhone(*req.Phone)
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}
	if req.BirthDate != nil {
		if *req.BirthDate == "" {
			patient.BirthDate = nil
		} else {
			birth, err := time.ParseInLocation(dateLayout, *req.BirthDate, time.Local)
			if err != nil {
				return nil, ErrInvalidTimeRange
			}
			patient.BirthDate = &birth
		}
	}

	if err := s.patientRepo.Update(patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) Delete(userID, id int64) error {
	if _, err := s.patientRepo.GetByID(userID, id); err != nil {
		if isNotFound(err) {
			return ErrPatientNotFound
		}
		return err
	}
	return s.patientRepo.Delete(userID, id)
}

// History lists the patient's appointments, newest first.
func (s *PatientService) History(userID, patientID int64) ([]model.Appointment, error) {
	if _, err := s.patientRepo.GetByID(userID, patientID); err != nil {
		if isNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return s.appointmentRepo.ListByPatient(userID, patientID)
}

// UploadPhoto stores the patient photo on OSS and records its URL.
func (s *PatientService) UploadPhoto(userID, patientID int64, data []byte, ext string) (string, error) {
	if s.ossClient == nil {
		return "", ErrStorageUnavailable
	}
	if _, err := s.patientRepo.GetByID(userID, patientID); err != nil {
		if isNotFound(err) {
			return "", ErrPatientNotFound
		}
		return "", err
	}

	url, err := s.ossClient.UploadPatientPhoto(patientID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.patientRepo.UpdateFields(userID, patientID, map[string]interface{}{"photo_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// normalizePhone strips formatting and stores numbers in a single
// +55-prefixed form. A number without an explicit country code is assumed
// Brazilian, so "(11) 95555-0005" and "+55 11 95555-0005" canonicalize to
// the same value. Every write path goes through this before hitting the
// phone column.
func normalizePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits
	}
	if strings.HasPrefix(digits, "55") && len(digits) >= 12 {
		return "+" + digits
	}
	return "+55" + digits
}
