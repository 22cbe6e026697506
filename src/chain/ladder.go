package chain

import (
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
)

// DefaultExpiryDays is the days-to-expiry ladder quoted when the caller supplies no
// target date. The 0 entry means "as of today"; the generator floors it to one day.
var DefaultExpiryDays = []int{0, 30, 60, 90, 180}

const (
	DefaultStrikeStep  = 5.0
	DefaultStrikeCount = 10
)

// BuildStrikeLadder returns count strikes at step increments, symmetric around the
// spot price rounded to the nearest step, sorted descending.
func BuildStrikeLadder(spot, step float64, count int) []float64 {
	if step <= 0 {
		step = DefaultStrikeStep
	}

	if count <= 0 {
		count = DefaultStrikeCount
	}

	base := math.Round(spot/step) * step

	strikes := make([]float64, 0, count)
	for i := count / 2; i > count/2-count; i-- {
		strikes = append(strikes, base+float64(i)*step)
	}

	return strikes
}

// BuildExpiryLadder returns the base days-to-expiry ladder, ascending. When target
// falls on a calendar day after now, the 0-day entry is replaced with the number of
// calendar days from now to target; a non-future target is ignored. The count
// ignores time-of-day on both sides, so a date-only target against a mid-day clock
// still lands on the full day.
func BuildExpiryLadder(base []int, now time.Time, target *time.Time) []int {
	if len(base) == 0 {
		base = DefaultExpiryDays
	}

	days := make([]int, len(base))
	copy(days, base)

	if target == nil {
		return days
	}

	daysToTarget := int(models.NormalizeDate(*target).Sub(models.NormalizeDate(now)).Hours() / 24)
	if daysToTarget <= 0 {
		log.Debugf("BuildExpiryLadder: target date %v is not in the future, keeping default ladder", target.Format("2006-01-02"))
		return days
	}

	for i, d := range days {
		if d == 0 {
			days[i] = daysToTarget
			break
		}
	}

	sort.Ints(days)

	return days
}
