package analysis

import (
	"errors"
	"fmt"

	"secmaster/src/models"

	"github.com/shopspring/decimal"
)

// PerformancePlaces is the number of fractional digits of a performance ratio.
const PerformancePlaces = 6

var (
	ErrNoBars    = errors.New("no bars")
	ErrZeroPrice = errors.New("zero base price")
)

// -----------------------------------------------------------------------------

// LatestClose returns the close of the last bar. Bars are ordered by date.
func LatestClose(bars []models.MBar) (decimal.Decimal, error) {
	if len(bars) == 0 {
		return decimal.Zero, ErrNoBars
	}
	return bars[len(bars)-1].Close, nil
}

// -----------------------------------------------------------------------------

// Performance returns close[-1] / close[-(days+1)] - 1, rounded to six places.
// Bars are ordered by date; days counts bars, not calendar days.
func Performance(bars []models.MBar, days int) (decimal.Decimal, error) {
	if days < 1 {
		return decimal.Zero, fmt.Errorf("days must be positive, got %d", days)
	}
	if len(bars) < days+1 {
		return decimal.Zero, fmt.Errorf("%w: need %d, have %d", ErrNoBars, days+1, len(bars))
	}

	p1 := bars[len(bars)-1].Close
	p0 := bars[len(bars)-1-days].Close
	return ChangeRatio(p1, p0)
}

// -----------------------------------------------------------------------------

// ChangeRatio returns current / previous - 1 rounded to six places.
func ChangeRatio(current, previous decimal.Decimal) (decimal.Decimal, error) {
	if previous.IsZero() {
		return decimal.Zero, ErrZeroPrice
	}
	return current.DivRound(previous, PerformancePlaces+4).Sub(decimal.NewFromInt(1)).Round(PerformancePlaces), nil
}
