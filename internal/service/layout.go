package service

import (
	"sort"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
)

// AgendaLayout maps agenda items onto the fixed pixel grid the mobile client
// scrolls vertically: a 07:00-24:00 window cut into 15-minute units of 40px
// each (all configurable). It is pure arithmetic over in-memory items.
type AgendaLayout struct {
	windowStartHour int
	windowEndHour   int
	slotMinutes     int
	unitHeightPx    int
	scrollLeadInPx  int
}

func NewAgendaLayout(cfg *config.CalendarConfig) *AgendaLayout {
	return &AgendaLayout{
		windowStartHour: cfg.WindowStartHour,
		windowEndHour:   cfg.WindowEndHour,
		slotMinutes:     cfg.SlotMinutes,
		unitHeightPx:    cfg.UnitHeightPx,
		scrollLeadInPx:  cfg.ScrollLeadInPx,
	}
}

func (l *AgendaLayout) minutesFromWindowStart(t time.Time) int {
	return (t.Hour()-l.windowStartHour)*60 + t.Minute()
}

// Top returns the pixel offset of a start instant on the grid.
func (l *AgendaLayout) Top(start time.Time) int {
	return l.minutesFromWindowStart(start) / l.slotMinutes * l.unitHeightPx
}

// Height returns the pixel height of an item, floored at one unit so
// zero-duration or malformed entries still render. The floor is a render
// clamp, not a data correction.
func (l *AgendaLayout) Height(start, end time.Time) int {
	minutes := l.minutesFromWindowStart(end) - l.minutesFromWindowStart(start)
	height := minutes / l.slotMinutes * l.unitHeightPx
	if height < l.unitHeightPx {
		return l.unitHeightPx
	}
	return height
}

// PlaceDay sorts one day's items by start time (ties broken by ID so output
// is deterministic) and attaches grid geometry to each.
func (l *AgendaLayout) PlaceDay(items []model.AgendaItem) []dto.PlacedItem {
	sorted := make([]model.AgendaItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	placed := make([]dto.PlacedItem, 0, len(sorted))
	for _, item := range sorted {
		placed = append(placed, dto.PlacedItem{
			AgendaItem: item,
			TopPx:      l.Top(item.Start),
			HeightPx:   l.Height(item.Start, item.End),
		})
	}
	return placed
}

// ScrollOffset resolves the initial scroll position for a day: the earliest
// starting item of any kind anchors the viewport; an empty day anchors on the
// current wall-clock time. A fixed lead-in keeps the anchor off the viewport
// edge, and the result never goes negative.
func (l *AgendaLayout) ScrollOffset(items []model.AgendaItem, now time.Time) int {
	anchor := now
	found := false
	for _, item := range items {
		if !found || item.Start.Before(anchor) {
			anchor = item.Start
			found = true
		}
	}

	offset := l.Top(anchor) - l.scrollLeadInPx
	if offset < 0 {
		return 0
	}
	return offset
}

// NowMarkerTop positions the current-time indicator. The marker is hidden
// whenever now falls outside the visible window, including before the window
// start.
func (l *AgendaLayout) NowMarkerTop(now time.Time) (int, bool) {
	if now.Hour() < l.windowStartHour || now.Hour() >= l.windowEndHour {
		return 0, false
	}
	return l.Top(now), true
}
