package updater

import (
	"context"
	"fmt"
	"time"

	"secmaster/src/interfaces"
	"secmaster/src/models"
	"secmaster/src/utils"
)

// WindowResolver computes which dates of a symbol are missing from storage.
type WindowResolver struct {
	Store        interfaces.IBarStore
	Calendar     interfaces.ICalendar
	Location     *time.Location // market timezone, decides "today"
	BoundaryHour int            // UTC hour at which window bounds are set
	Now          func() time.Time
}

// -----------------------------------------------------------------------------

func NewWindowResolver(store interfaces.IBarStore, cal interfaces.ICalendar, boundaryHour int) *WindowResolver {
	return &WindowResolver{
		Store:        store,
		Calendar:     cal,
		Location:     utils.NewYork(),
		BoundaryHour: boundaryHour,
		Now:          time.Now,
	}
}

// -----------------------------------------------------------------------------

// Resolve returns the update window of symbol.
//
// The last complete session is the business day before today in the market
// timezone. To is the day after it at the boundary hour (exclusive). From is
// the day after the last stored bar at the same hour; From >= To means the
// symbol is current.
func (r *WindowResolver) Resolve(ctx context.Context, symbol string) (models.MWindow, error) {
	today := utils.DateOf(r.Now(), r.Location)
	lastSession := r.Calendar.PreviousBusinessDay(today)
	boundary := time.Duration(r.BoundaryHour) * time.Hour

	w := models.MWindow{
		To:          lastSession.AddDate(0, 0, 1).Add(boundary),
		LastSession: lastSession,
	}

	last, ok, err := r.Store.MaxBarDate(ctx, symbol)
	if err != nil {
		return w, fmt.Errorf("resolve window for %s: %w", symbol, err)
	}
	if !ok {
		w.Mode = models.WindowFullHistory
		return w, nil
	}

	lastDate := utils.DateOf(last, time.UTC)
	w.From = lastDate.AddDate(0, 0, 1).Add(boundary)

	if !w.From.Before(w.To) {
		w.Mode = models.WindowCurrent
		return w, nil
	}

	w.Mode = models.WindowRange
	return w, nil
}

// -----------------------------------------------------------------------------

// Contains reports whether a trading date falls inside the window.
func Contains(w models.MWindow, tradingDate time.Time) bool {
	d := utils.DateOf(tradingDate, time.UTC)
	if !d.Before(utils.DateOf(w.To, time.UTC)) {
		return false
	}
	if w.Mode == models.WindowFullHistory {
		return true
	}
	return !d.Before(utils.DateOf(w.From, time.UTC))
}
