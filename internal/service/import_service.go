package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/repository"
)

// ImportService loads contacts exported from the phone into the patient base.
// Expected CSV columns: name, phone, email, birth_date (YYYY-MM-DD); a header
// row is detected and skipped.
type ImportService struct {
	patientRepo *repository.PatientRepository
}

func NewImportService(patientRepo *repository.PatientRepository) *ImportService {
	return &ImportService{patientRepo: patientRepo}
}

// ImportCSV creates patients from the stream, deduplicating by phone.
// Malformed lines are counted and reported, never fatal.
func (s *ImportService) ImportCSV(userID int64, r io.Reader) (*dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &dto.ImportResult{}
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if line == 1 && isHeaderRow(record) {
			continue
		}

		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing name", line))
			continue
		}

		patient := &model.Patient{
			UserID: userID,
			Name:   strings.TrimSpace(record[0]),
			Source: "import",
		}
		if len(record) > 1 {
			patient.Phone = normalizePhone(record[1])
		}
		if len(record) > 2 {
			patient.Email = strings.TrimSpace(record[2])
		}
		if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
			birth, err := time.ParseInLocation(dateLayout, strings.TrimSpace(record[3]), time.Local)
			if err == nil {
				patient.BirthDate = &birth
			}
		}

		if patient.Phone != "" {
			exists, err := s.patientRepo.ExistsByPhone(userID, patient.Phone)
			if err != nil {
				return nil, err
			}
			if exists {
				result.Skipped++
				continue
			}
		}

		if err := s.patientRepo.Create(patient); err != nil {
			return nil, err
		}
		result.Created++
	}

	return result, nil
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "name" || first == "nome"
}
