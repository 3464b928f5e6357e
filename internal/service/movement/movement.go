// Package movement implements the arrival and shipment event logs for both
// commodity streams. Every create, edit and delete cascades a matching
// stock ledger adjustment inside one store transaction.
package movement

import (
	"time"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
)

// maxRangeDays bounds range queries to keep them structurally cheap.
const maxRangeDays = 31

const dayFormat = "2006-01-02"

// resolveRange turns optional inclusive day bounds into a concrete window.
// A single bound selects that one day; no bounds select today.
func resolveRange(start, end *time.Time, now func() time.Time) (time.Time, time.Time, error) {
	var from, to time.Time
	switch {
	case start == nil && end == nil:
		from = models.Day(now())
		to = from
	case start != nil && end == nil:
		from = models.Day(*start)
		to = from
	case start == nil && end != nil:
		from = models.Day(*end)
		to = from
	default:
		from = models.Day(*start)
		to = models.Day(*end)
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, errs.Invalidf("range end %s precedes start %s", to.Format(dayFormat), from.Format(dayFormat))
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxRangeDays {
		return time.Time{}, time.Time{}, errs.Invalidf("range of %d days exceeds the %d day limit", days, maxRangeDays)
	}
	return from, to, nil
}
