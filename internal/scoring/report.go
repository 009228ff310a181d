// Package scoring computes the per-issue error report and the aggregate
// APT score for a project. Pure in-memory arithmetic; callers fetch the
// error rows.
package scoring

import (
	"github.com/scorecard/api/internal/model"
)

// TallySlots is the width of one issue's report row:
// 4 source severities, source total, 4 target severities, target total,
// grand total.
const TallySlots = 11

// Tally slot offsets.
const (
	slotSourceTotal = 4
	slotTargetBase  = 5
	slotTargetTotal = 9
	slotGrandTotal  = 10
)

type Tally [TallySlots]int

var severityIndex = map[string]int{
	model.LevelNeutral:  0,
	model.LevelMinor:    1,
	model.LevelMajor:    2,
	model.LevelCritical: 3,
}

// SeverityWeights is the fixed APT penalty per error severity.
var SeverityWeights = map[string]int{
	model.LevelNeutral:  0,
	model.LevelMinor:    1,
	model.LevelMajor:    5,
	model.LevelCritical: 25,
}

// BuildReport groups errors by issue into per-issue tallies. The returned
// order slice lists issues by first occurrence, so the result is
// deterministic for a given error sequence and the tally map is
// order-independent.
func BuildReport(errs []model.Error) (map[string]*Tally, []string) {
	report := make(map[string]*Tally)
	var order []string

	for _, e := range errs {
		tally, ok := report[e.Issue]
		if !ok {
			tally = &Tally{}
			report[e.Issue] = tally
			order = append(order, e.Issue)
		}

		severity, ok := severityIndex[e.Level]
		if !ok {
			continue
		}

		offset := 0
		totalSlot := slotSourceTotal
		if e.Type == model.TypeTarget {
			offset = slotTargetBase
			totalSlot = slotTargetTotal
		}

		tally[severity+offset]++
		tally[totalSlot]++
		tally[slotGrandTotal]++
	}

	return report, order
}

// CalculateAPT sums the severity weight of every error, regardless of
// direction. The result is a raw weighted sum; word counts are stored on
// the project but intentionally not folded in.
func CalculateAPT(errs []model.Error) int {
	apt := 0
	for _, e := range errs {
		apt += SeverityWeights[e.Level]
	}
	return apt
}
