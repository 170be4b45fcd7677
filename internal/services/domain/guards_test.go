package domain

import "testing"

func TestValidateRevisionRequest(t *testing.T) {
	tests := []struct {
		name      string
		cursor    Stage
		requested int
		existing  int
		quota     int
		wantFail  bool
	}{
		{"first revision after delivery", StageDelivered, 1, 0, 2, false},
		{"second revision after redelivery", StageRevisionDelivered, 2, 1, 2, false},
		{"quota exhausted", StageDelivered, 3, 2, 2, true},
		{"duplicate revision number", StageRevisionDelivered, 1, 1, 2, true},
		{"skipped revision number", StageDelivered, 3, 1, 5, true},
		{"wrong cursor work in progress", StageWorkInProgress, 1, 0, 2, true},
		{"wrong cursor pending upload", StagePendingUpload, 1, 0, 2, true},
		{"already completed", StageCompleted, 1, 0, 2, true},
	}

	for _, tc := range tests {
		reason := ValidateRevisionRequest(tc.cursor, tc.requested, tc.existing, tc.quota)
		if tc.wantFail && reason == "" {
			t.Errorf("%s: expected a refusal reason", tc.name)
		}
		if !tc.wantFail && reason != "" {
			t.Errorf("%s: unexpected refusal: %s", tc.name, reason)
		}
	}
}

func TestValidateRevisionRequestScenario(t *testing.T) {
	// A service with a quota of two and no revisions yet accepts revision 1;
	// repeating revision 1 afterwards is out of sequence.
	if reason := ValidateRevisionRequest(StageDelivered, 1, 0, 2); reason != "" {
		t.Fatalf("first request refused: %s", reason)
	}
	if reason := ValidateRevisionRequest(StageRevisionRequest, 1, 1, 2); reason == "" {
		t.Fatal("repeated revision number was accepted")
	}
}

func TestValidateCompletion(t *testing.T) {
	if reason := ValidateCompletion(StageDelivered); reason != "" {
		t.Errorf("completion from Delivered refused: %s", reason)
	}
	if reason := ValidateCompletion(StageRevisionDelivered); reason != "" {
		t.Errorf("completion from Revision Delivered refused: %s", reason)
	}
	if reason := ValidateCompletion(StageCompleted); reason == "" {
		t.Error("completing an already completed service was accepted")
	}
}
