// Package domain provides core business rules for the service lifecycle.
package domain

// Stage is one step of the service delivery pipeline. The string values are
// the display names rendered in the customer's progress tracker and stored
// verbatim in the status ledger.
type Stage string

const (
	StagePendingUpload       Stage = "Pending Upload"
	StageUnderReview         Stage = "Under Review"
	StageUnderReviewInternal Stage = "Under Review Internally"
	StageWorkInProgress      Stage = "Work In Progress"
	StageDelivered           Stage = "Delivered"
	StageRevisionRequest     Stage = "Revision Request"
	StageRevisionDelivered   Stage = "Revision Delivered"
	StageCompleted           Stage = "Completed"
)

// defaultFlow is the pipeline rendered to customers. StageUnderReviewInternal
// is a side branch entered from Work In Progress and never shown here.
var defaultFlow = []Stage{
	StagePendingUpload,
	StageUnderReview,
	StageWorkInProgress,
	StageDelivered,
	StageRevisionRequest,
	StageRevisionDelivered,
	StageCompleted,
}

// pipelinePosition orders every stage, branch stages included, so guards can
// reason about forward/backward movement. The internal QA branch sits between
// Work In Progress and Delivered.
var pipelinePosition = map[Stage]int{
	StagePendingUpload:       0,
	StageUnderReview:         1,
	StageWorkInProgress:      2,
	StageUnderReviewInternal: 3,
	StageDelivered:           4,
	StageRevisionRequest:     5,
	StageRevisionDelivered:   6,
	StageCompleted:           7,
}

// IsKnownStage reports whether the value is a member of the stage enum.
func IsKnownStage(stage Stage) bool {
	_, ok := pipelinePosition[stage]
	return ok
}

// Position returns the pipeline position of a stage. Unknown stages are a
// programming error and panic.
func Position(stage Stage) int {
	pos, ok := pipelinePosition[stage]
	if !ok {
		panic("domain: unknown service stage " + string(stage))
	}
	return pos
}

// IsBranchStage reports whether the stage lives outside the default
// customer-visible flow.
func IsBranchStage(stage Stage) bool {
	return stage == StageUnderReviewInternal
}

// DefaultFlow returns the customer-visible pipeline in order.
func DefaultFlow() []Stage {
	flow := make([]Stage, len(defaultFlow))
	copy(flow, defaultFlow)
	return flow
}
