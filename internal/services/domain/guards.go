package domain

import "fmt"

// ValidateRevisionRequest checks the guards for a customer revision request.
// Returns a non-empty user-facing reason when the request must be refused.
// existing is the number of revision entries already recorded; quota is the
// purchased revision allowance.
func ValidateRevisionRequest(cursor Stage, requested, existing, quota int) string {
	if cursor != StageDelivered && cursor != StageRevisionDelivered {
		return fmt.Sprintf("revisions can only be requested after delivery, not while %s", cursor)
	}
	if requested > quota {
		return fmt.Sprintf("revision quota exhausted: %d of %d revisions used", existing, quota)
	}
	if requested != existing+1 {
		return fmt.Sprintf("revision %d is out of sequence, expected revision %d", requested, existing+1)
	}
	return ""
}

// ValidateCompletion checks that a service can be closed out from its
// current cursor. Completion is allowed from any non-terminal stage.
func ValidateCompletion(cursor Stage) string {
	if cursor == StageCompleted {
		return "service is already completed"
	}
	return ""
}
