package dto

import (
	"github.com/agendahof/agendahof-server/internal/model"
)

type CreateAppointmentRequest struct {
	PatientID *int64 `json:"patient_id,omitempty"`
	Title     string `json:"title" binding:"required,max=200"`
	Procedure string `json:"procedure,omitempty"`
	Date      string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"` // HH:MM
	EndTime   string `json:"end_time" binding:"required"`   // HH:MM
	Notes     string `json:"notes,omitempty"`
}

type UpdateAppointmentRequest struct {
	PatientID *int64  `json:"patient_id,omitempty"`
	Title     *string `json:"title,omitempty"`
	Procedure *string `json:"procedure,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Status    *string `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type CreateCommitmentRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Notes     string `json:"notes,omitempty"`
}

type CreateBlockRequest struct {
	Title      string `json:"title" binding:"required,max=200"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	DaysOfWeek []int  `json:"days_of_week" binding:"required,min=1"`
}

type UpdateBlockRequest struct {
	Title      *string `json:"title,omitempty"`
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
	DaysOfWeek *[]int  `json:"days_of_week,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// PlacedItem is an agenda item plus its resolved grid geometry.
type PlacedItem struct {
	model.AgendaItem
	TopPx    int `json:"top_px"`
	HeightPx int `json:"height_px"`
}

// DayLayout is everything the client needs to paint one agenda day.
type DayLayout struct {
	Date           string       `json:"date"`
	Items          []PlacedItem `json:"items"`
	ScrollOffsetPx int          `json:"scroll_offset_px"`
	NowMarker      *NowMarker   `json:"now_marker,omitempty"`
}

type NowMarker struct {
	TopPx int `json:"top_px"`
}

type WeekLayout struct {
	StartDate string      `json:"start_date"`
	Days      []DayLayout `json:"days"`
}
