package escalation

import (
	"fmt"
	"time"
)

// State is the computed escalation state of an invoice.  It is never stored;
// every evaluation recomputes it from the invoice snapshot and the clock.
type State string

const (
	// StatePaused means the pause flag suspends all action.
	StatePaused State = "paused"

	// StateNotStarted means reminder tracking has no start date yet.
	StateNotStarted State = "not_started"

	// StateAwaitingFirst through StateAwaitingThird mean the corresponding
	// stage's email has not been sent yet.
	StateAwaitingFirst  State = "awaiting_first"
	StateAwaitingSecond State = "awaiting_second"
	StateAwaitingThird  State = "awaiting_third"

	// StateExhausted means all three reminders have been sent.
	StateExhausted State = "exhausted"
)

// Evaluation is the stage/label/permission tuple computed for one invoice.
type Evaluation struct {
	// State classifies the escalation position.
	State State `json:"state"`

	// Stage is the 1-based stage currently awaited, or 0 when no stage
	// applies (paused, not started, exhausted).
	Stage int `json:"stage"`

	// Label is the operator-facing description ("1st reminder in 3 days",
	// "2nd reminder overdue by 1 day", "3 reminders sent", ...).
	Label string `json:"label"`

	// CanSend reports whether sending the awaited stage is permitted now.
	CanSend bool `json:"can_send"`

	// RemainingDays is threshold minus elapsed whole days for the awaited
	// stage: positive before it is due, zero on the due day, negative once
	// overdue.  Zero when no stage applies.
	RemainingDays int `json:"remaining_days"`
}

const day = 24 * time.Hour

var ordinals = [...]string{1: "1st", 2: "2nd", 3: "3rd"}

// Evaluate computes the escalation state of inv at the instant now.
//
// The decision order is strict: the pause flag wins over everything, then a
// missing start date, then stages 1→3 stop at the first one whose sent
// timestamp is still nil.  Elapsed time is measured in whole days
// (floor((now-ref)/24h)) from the stage's reference date: ReminderStart for
// stage 1, the previous stage's sent timestamp for stages 2 and 3.
//
// Evaluate is pure (same inputs, same output) and must be re-invoked with a
// fresh now for every display or permission check.
func Evaluate(inv *Invoice, th Thresholds, now time.Time) Evaluation {
	if inv.Paused {
		return Evaluation{State: StatePaused, Label: "Paused"}
	}
	if inv.ReminderStart == nil {
		return Evaluation{State: StateNotStarted, Label: "—"}
	}

	refs := [...]*time.Time{1: inv.ReminderStart, 2: inv.FirstReminderAt, 3: inv.SecondReminderAt}
	sent := [...]*time.Time{1: inv.FirstReminderAt, 2: inv.SecondReminderAt, 3: inv.ThirdReminderAt}
	states := [...]State{1: StateAwaitingFirst, 2: StateAwaitingSecond, 3: StateAwaitingThird}

	for stage := 1; stage <= 3; stage++ {
		if sent[stage] != nil {
			continue
		}
		elapsed := wholeDays(now.Sub(*refs[stage]))
		remaining := th.delay(stage) - elapsed
		return Evaluation{
			State:         states[stage],
			Stage:         stage,
			Label:         stageLabel(stage, remaining),
			CanSend:       remaining <= 0,
			RemainingDays: remaining,
		}
	}

	return Evaluation{State: StateExhausted, Label: "3 reminders sent"}
}

// wholeDays floors d to whole days.  Plain integer division truncates toward
// zero, which would round a negative elapsed (reference date in the future)
// the wrong way.
func wholeDays(d time.Duration) int {
	n := int(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// stageLabel renders the operator-facing countdown for a stage.
func stageLabel(stage, remaining int) string {
	ord := ordinals[stage]
	switch {
	case remaining > 0:
		return fmt.Sprintf("%s reminder in %d %s", ord, remaining, plural(remaining))
	case remaining == 0:
		return fmt.Sprintf("%s reminder due today", ord)
	default:
		overdue := -remaining
		return fmt.Sprintf("%s reminder overdue by %d %s", ord, overdue, plural(overdue))
	}
}

func plural(n int) string {
	if n > 1 {
		return "days"
	}
	return "day"
}
