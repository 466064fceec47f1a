package badges

import "errors"

// ErrInvalidEvent reports an event missing its required field: a scan
// without an order id, or a screen visit without a screen name.
var ErrInvalidEvent = errors.New("invalid badge event")

// EventKind discriminates activity events.
type EventKind string

const (
	EventScan        EventKind = "scan"
	EventScreenVisit EventKind = "visitScreen"
)

// Event is one activity event for a user.
type Event struct {
	Kind    EventKind `json:"action"`
	OrderID string    `json:"orderId,omitempty"`
	Screen  string    `json:"screen,omitempty"`
}

// Progress is the per-user cumulative activity record. It is owned by the
// persistence collaborator and mutated only through Service.Record.
type Progress struct {
	UserID         string      `json:"user_id"`
	TotalScans     int         `json:"total_scans"`
	ScannedCodes   []string    `json:"scanned_codes"`
	ActivityDates  []string    `json:"activity_dates"`
	VisitedScreens []string    `json:"visited_screens"`
	Earned         map[ID]bool `json:"badges_earned"`
}

// NewProgress returns the zero progress record for a user: all counters
// zero, every badge unearned.
func NewProgress(userID string) Progress {
	earned := make(map[ID]bool, len(catalog))
	for _, def := range catalog {
		earned[def.ID] = false
	}
	return Progress{
		UserID: userID,
		Earned: earned,
	}
}

// applyScan records one scan event. TotalScans counts every event, even a
// repeat of an already-seen order id, while ScannedCodes and ActivityDates
// dedupe. The asymmetry matches the original product behavior: repeat
// scans keep raising TotalScans without advancing the distinct-codes badge.
func (p *Progress) applyScan(orderID, date string) {
	p.TotalScans++
	if !contains(p.ScannedCodes, orderID) {
		p.ScannedCodes = append(p.ScannedCodes, orderID)
	}
	if !contains(p.ActivityDates, date) {
		p.ActivityDates = append(p.ActivityDates, date)
	}
}

// applyScreenVisit records a screen visit, deduped by screen name.
func (p *Progress) applyScreenVisit(screen string) {
	if !contains(p.VisitedScreens, screen) {
		p.VisitedScreens = append(p.VisitedScreens, screen)
	}
}

// Apply applies ev to the progress record, dated today (YYYY-MM-DD), then
// re-evaluates all badge predicates in table order. Unlocks are one-way:
// an earned badge is never reverted even if its predicate no longer holds.
func (p *Progress) Apply(ev Event, today string) error {
	switch {
	case ev.Kind == EventScan && ev.OrderID != "":
		p.applyScan(ev.OrderID, today)
	case ev.Kind == EventScreenVisit && ev.Screen != "":
		p.applyScreenVisit(ev.Screen)
	default:
		return ErrInvalidEvent
	}

	if p.Earned == nil {
		p.Earned = make(map[ID]bool, len(catalog))
	}
	for _, def := range catalog {
		if !p.Earned[def.ID] && def.Unlocked(p) {
			p.Earned[def.ID] = true
		}
	}
	return nil
}
