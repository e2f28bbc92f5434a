package service

import (
	"log"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/pubsub"
	"github.com/agendahof/agendahof-server/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// rruleWeekdays maps the stored 0=Sunday..6=Saturday convention onto rrule
// weekday constants.
var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

type AgendaService struct {
	appointmentRepo *repository.AppointmentRepository
	commitmentRepo  *repository.CommitmentRepository
	blockRepo       *repository.BlockRepository
	reminderService *ReminderService
	publisher       *pubsub.Publisher
	layout          *AgendaLayout
	cfg             *config.Config
}

func NewAgendaService(
	appointmentRepo *repository.AppointmentRepository,
	commitmentRepo *repository.CommitmentRepository,
	blockRepo *repository.BlockRepository,
	reminderService *ReminderService,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *AgendaService {
	return &AgendaService{
		appointmentRepo: appointmentRepo,
		commitmentRepo:  commitmentRepo,
		blockRepo:       blockRepo,
		reminderService: reminderService,
		publisher:       publisher,
		layout:          NewAgendaLayout(&cfg.Calendar),
		cfg:             cfg,
	}
}

// DayLayout assembles and places everything on one agenda day.
func (s *AgendaService) DayLayout(userID int64, date string, now time.Time) (*dto.DayLayout, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	items, err := s.assembleDay(userID, day)
	if err != nil {
		return nil, err
	}

	layout := &dto.DayLayout{
		Date:           date,
		Items:          s.layout.PlaceDay(items),
		ScrollOffsetPx: s.layout.ScrollOffset(items, now),
	}

	if sameDate(day, now) {
		if top, visible := s.layout.NowMarkerTop(now); visible {
			layout.NowMarker = &dto.NowMarker{TopPx: top}
		}
	}

	return layout, nil
}

// WeekLayout applies day geometry independently to 7 columns starting at
// startDate. Concurrent items are not laterally offset; z-order is the
// client's concern.
func (s *AgendaService) WeekLayout(userID int64, startDate string, now time.Time) (*dto.WeekLayout, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, time.Local)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	week := &dto.WeekLayout{StartDate: startDate}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		layout, err := s.DayLayout(userID, day.Format(dateLayout), now)
		if err != nil {
			return nil, err
		}
		week.Days = append(week.Days, *layout)
	}
	return week, nil
}

// assembleDay normalizes the day's rows into AgendaItems. Rows whose date or
// time columns fail to parse are dropped and logged; one bad record must not
// abort the rest of the day.
func (s *AgendaService) assembleDay(userID int64, day time.Time) ([]model.AgendaItem, error) {
	date := day.Format(dateLayout)

	appointments, err := s.appointmentRepo.ListByDate(userID, date)
	if err != nil {
		return nil, err
	}
	commitments, err := s.commitmentRepo.ListByDate(userID, date)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blockRepo.ListActive(userID)
	if err != nil {
		return nil, err
	}

	items := make([]model.AgendaItem, 0, len(appointments)+len(commitments)+len(blocks))

	for _, a := range appointments {
		start, end, err := parseDayTimes(day, a.StartTime, a.EndTime)
		if err != nil {
			log.Printf("Agenda: dropping appointment %d with bad times: %v", a.ID, err)
			continue
		}
		items = append(items, model.AgendaItem{
			ID:        a.ID,
			Kind:      model.KindAppointment,
			Title:     a.Title,
			Start:     start,
			End:       end,
			Status:    a.Status,
			PatientID: a.PatientID,
		})
	}

	for _, c := range commitments {
		start, end, err := parseDayTimes(day, c.StartTime, c.EndTime)
		if err != nil {
			log.Printf("Agenda: dropping commitment %d with bad times: %v", c.ID, err)
			continue
		}
		items = append(items, model.AgendaItem{
			ID:    c.ID,
			Kind:  model.KindCommitment,
			Title: c.Title,
			Start: start,
			End:   end,
		})
	}

	for _, b := range blocks {
		item, ok := s.materializeBlock(b, day)
		if ok {
			items = append(items, item)
		}
	}

	return items, nil
}

// materializeBlock expands a weekly rule against one date. The rule
// contributes an item only when the date's weekday is in its set.
func (s *AgendaService) materializeBlock(block model.RecurringBlock, day time.Time) (model.AgendaItem, bool) {
	start, end, err := parseDayTimes(day, block.StartTime, block.EndTime)
	if err != nil {
		log.Printf("Agenda: dropping block %d with bad times: %v", block.ID, err)
		return model.AgendaItem{}, false
	}

	weekdays := make([]rrule.Weekday, 0, len(block.DaysOfWeek))
	for _, d := range block.DaysOfWeek {
		if d >= 0 && d <= 6 {
			weekdays = append(weekdays, rruleWeekdays[d])
		}
	}
	if len(weekdays) == 0 {
		return model.AgendaItem{}, false
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: weekdays,
		// Anchor one week back so the queried day is always inside the
		// generation range.
		Dtstart: start.AddDate(0, 0, -7),
	})
	if err != nil {
		log.Printf("Agenda: dropping block %d with bad rule: %v", block.ID, err)
		return model.AgendaItem{}, false
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	if len(rule.Between(dayStart, dayEnd, true)) == 0 {
		return model.AgendaItem{}, false
	}

	return model.AgendaItem{
		ID:    block.ID,
		Kind:  model.KindBlock,
		Title: block.Title,
		Start: start,
		End:   end,
	}, true
}

func parseDayTimes(day time.Time, startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(timeLayout, startStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(timeLayout, endStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	anchor := func(t time.Time) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
	}
	return anchor(start), anchor(end), nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CreateAppointment validates the submitted date/times, persists the row,
// schedules its reminders and notifies connected clients.
func (s *AgendaService) CreateAppointment(userID int64, req *dto.CreateAppointmentRequest) (*model.Appointment, error) {
	day, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	start, _, err := parseDayTimes(day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	appointment := &model.Appointment{
		UserID:    userID,
		PatientID: req.PatientID,
		Title:     req.Title,
		Procedure: req.Procedure,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.AppointmentScheduled,
		Notes:     req.Notes,
	}
	if err := s.appointmentRepo.Create(appointment); err != nil {
		return nil, err
	}

	if s.reminderService != nil {
		if err := s.reminderService.ScheduleForAppointment(appointment, start); err != nil {
			log.Printf("Agenda: failed to schedule reminders for appointment %d: %v", appointment.ID, err)
		}
	}
	s.publishEvent(userID, pubsub.EventAppointmentCreated, appointment)

	return appointment, nil
}

func (s *AgendaService) GetAppointment(userID, id int64) (*model.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appointment, nil
}

func (s *AgendaService) UpdateAppointment(userID, id int64, req *dto.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.PatientID != nil {
		appointment.PatientID = req.PatientID
	}
	if req.Title != nil {
		appointment.Title = *req.Title
	}
	if req.Procedure != nil {
		appointment.Procedure = *req.Procedure
	}
	if req.Date != nil {
		appointment.Date = *req.Date
	}
	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appointment.EndTime = *req.EndTime
	}
	if req.Status != nil {
		appointment.Status = *req.Status
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	day, err := time.ParseInLocation(dateLayout, appointment.Date, time.Local)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	start, _, err := parseDayTimes(day, appointment.StartTime, appointment.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	if err := s.appointmentRepo.Update(appointment); err != nil {
		return nil, err
	}

	if s.reminderService != nil {
		if appointment.Status == model.AppointmentCancelled {
			s.reminderService.CancelForAppointment(appointment.ID)
		} else if err := s.reminderService.RescheduleForAppointment(appointment, start); err != nil {
			log.Printf("Agenda: failed to reschedule reminders for appointment %d: %v", appointment.ID, err)
		}
	}
	s.publishEvent(userID, pubsub.EventAppointmentUpdated, appointment)

	return appointment, nil
}

func (s *AgendaService) DeleteAppointment(userID, id int64) error {
	if _, err := s.appointmentRepo.GetByID(userID, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.appointmentRepo.Delete(userID, id); err != nil {
		return err
	}
	if s.reminderService != nil {
		s.reminderService.CancelForAppointment(id)
	}
	s.publishEvent(userID, pubsub.EventAppointmentDeleted, map[string]int64{"id": id})
	return nil
}

func (s *AgendaService) CreateCommitment(userID int64, req *dto.CreateCommitmentRequest) (*model.Commitment, error) {
	day, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	if _, _, err := parseDayTimes(day, req.StartTime, req.EndTime); err != nil {
		return nil, ErrInvalidTimeRange
	}

	commitment := &model.Commitment{
		UserID:    userID,
		Title:     req.Title,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if err := s.commitmentRepo.Create(commitment); err != nil {
		return nil, err
	}
	s.publishEvent(userID, pubsub.EventAgendaChanged, commitment)
	return commitment, nil
}

func (s *AgendaService) DeleteCommitment(userID, id int64) error {
	if _, err := s.commitmentRepo.GetByID(userID, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.commitmentRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, pubsub.EventAgendaChanged, map[string]int64{"id": id})
	return nil
}

func (s *AgendaService) CreateBlock(userID int64, req *dto.CreateBlockRequest) (*model.RecurringBlock, error) {
	if _, _, err := parseDayTimes(time.Now(), req.StartTime, req.EndTime); err != nil {
		return nil, ErrInvalidTimeRange
	}

	block := &model.RecurringBlock{
		UserID:     userID,
		Title:      req.Title,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DaysOfWeek: req.DaysOfWeek,
		Active:     true,
	}
	if err := s.blockRepo.Create(block); err != nil {
		return nil, err
	}
	s.publishEvent(userID, pubsub.EventAgendaChanged, block)
	return block, nil
}

func (s *AgendaService) ListBlocks(userID int64) ([]model.RecurringBlock, error) {
	return s.blockRepo.List(userID)
}

func (s *AgendaService) UpdateBlock(userID, id int64, req *dto.UpdateBlockRequest) (*model.RecurringBlock, error) {
	block, err := s.blockRepo.GetByID(userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		block.Title = *req.Title
	}
	if req.StartTime != nil {
		block.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		block.EndTime = *req.EndTime
	}
	if req.DaysOfWeek != nil {
		block.DaysOfWeek = *req.DaysOfWeek
	}
	if req.Active != nil {
		block.Active = *req.Active
	}

	if err := s.blockRepo.Update(block); err != nil {
		return nil, err
	}
	s.publishEvent(userID, pubsub.EventAgendaChanged, block)
	return block, nil
}

func (s *AgendaService) DeleteBlock(userID, id int64) error {
	if _, err := s.blockRepo.GetByID(userID, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.blockRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, pubsub.EventAgendaChanged, map[string]int64{"id": id})
	return nil
}

func (s *AgendaService) publishEvent(userID int64, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAgendaEvent(userID, eventType, payload); err != nil {
		log.Printf("Agenda: failed to publish %s for user %d: %v", eventType, userID, err)
	}
}
