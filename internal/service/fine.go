package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// RepeatSurchargePercent is added once to the base fine when the vehicle
// already has a violation on the same calendar day.
const RepeatSurchargePercent = 25

type Fine struct {
	Base           int64
	Surcharge      int64
	Final          int64
	RepeatOffender bool
}

// ComputeFine does not compound: any positive same-day count yields the same surcharge.
func ComputeFine(base, sameDayCount int64) Fine {
	fine := Fine{Base: base, Final: base}
	if sameDayCount > 0 {
		fine.Surcharge = (base*RepeatSurchargePercent + 50) / 100
		fine.Final = base + fine.Surcharge
		fine.RepeatOffender = true
	}
	return fine
}

// TicketGenerator builds prefix + YYYYMMDD + four random digits. Numbers are
// not guaranteed unique; the store rejects duplicates.
type TicketGenerator struct {
	prefix string
	intN   func(n int) int
}

func NewTicketGenerator(prefix string) TicketGenerator {
	return TicketGenerator{prefix: prefix, intN: rand.IntN}
}

func (g TicketGenerator) Next(at time.Time) string {
	return fmt.Sprintf("%s%s%04d", g.prefix, at.Format("20060102"), g.intN(9999)+1)
}

func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
