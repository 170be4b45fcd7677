package domain

import "fmt"

// EntryState marks one ledger entry's relation to the cursor.
type EntryState string

const (
	StateCompleted EntryState = "completed"
	StateCurrent   EntryState = "current"
	StatePending   EntryState = "pending"
)

// LedgerEntry is one row of the progress tracker.
type LedgerEntry struct {
	Name  Stage      `json:"name"`
	State EntryState `json:"state"`
}

// Ledger is the ordered stage/state sequence stored on every purchased
// service. It is replaced wholesale on each transition; exactly one entry is
// current at any time.
type Ledger []LedgerEntry

// LedgerFor builds the replacement ledger for a transition into target.
// Stages before the target are completed, the target is current, the rest
// pending. The internal QA branch stage only appears in the ledger while it
// is the cursor; the revision stages are part of the default flow and cycle
// in place. Unknown target is a programming error and panics.
func LedgerFor(target Stage) Ledger {
	targetPos := Position(target)

	stages := defaultFlow
	if IsBranchStage(target) {
		stages = make([]Stage, 0, len(defaultFlow)+1)
		inserted := false
		for _, stage := range defaultFlow {
			if !inserted && Position(stage) > targetPos {
				stages = append(stages, target)
				inserted = true
			}
			stages = append(stages, stage)
		}
	}

	ledger := make(Ledger, 0, len(stages))
	for _, stage := range stages {
		state := StatePending
		switch {
		case stage == target:
			state = StateCurrent
		case Position(stage) < targetPos:
			state = StateCompleted
		}
		ledger = append(ledger, LedgerEntry{Name: stage, State: state})
	}
	return ledger
}

// DefaultLedger is the ledger of a freshly purchased service.
func DefaultLedger() Ledger {
	return LedgerFor(StagePendingUpload)
}

// Current returns the cursor entry's stage.
func (l Ledger) Current() (Stage, bool) {
	for _, entry := range l {
		if entry.State == StateCurrent {
			return entry.Name, true
		}
	}
	return "", false
}

// Validate checks the structural invariants: exactly one current entry,
// completed entries strictly before it, pending entries strictly after it,
// and the cursor mirroring statusType.
func (l Ledger) Validate(statusType Stage) error {
	currentCount := 0
	var cursor Stage
	var cursorPos int

	for _, entry := range l {
		if !IsKnownStage(entry.Name) {
			return fmt.Errorf("ledger contains unknown stage %q", entry.Name)
		}
		if entry.State == StateCurrent {
			currentCount++
			cursor = entry.Name
			cursorPos = Position(entry.Name)
		}
	}
	if currentCount != 1 {
		return fmt.Errorf("ledger has %d current entries, want exactly 1", currentCount)
	}
	if cursor != statusType {
		return fmt.Errorf("status type %q does not mirror ledger cursor %q", statusType, cursor)
	}

	for _, entry := range l {
		pos := Position(entry.Name)
		switch entry.State {
		case StateCompleted:
			if pos >= cursorPos {
				return fmt.Errorf("completed stage %q is not before cursor %q", entry.Name, cursor)
			}
		case StatePending:
			if pos <= cursorPos {
				return fmt.Errorf("pending stage %q is not after cursor %q", entry.Name, cursor)
			}
		case StateCurrent:
		default:
			return fmt.Errorf("ledger entry %q has unknown state %q", entry.Name, entry.State)
		}
	}
	return nil
}
