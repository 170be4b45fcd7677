// Package notify implements the asynchronous email-notification queue:
// trigger kinds, the queue client and worker, and the dispatcher mapping
// each trigger to its customer/staff email pair.
package notify

// TriggerKind is the enumerated reason for a notification. The string values
// are part of the queue's job payload and mirror the gateway/product event
// names used by the frontend.
type TriggerKind string

const (
	TriggerServicePurchase         TriggerKind = "servicepurchase"
	TriggerServiceAssign           TriggerKind = "serviceassign"
	TriggerServiceReview           TriggerKind = "servicereview"
	TriggerServiceReuploadRequest  TriggerKind = "servicereuploadrequest"
	TriggerServiceReupload         TriggerKind = "servicereupload"
	TriggerServiceSubmitted        TriggerKind = "servicesubmitted"
	TriggerServiceRejected         TriggerKind = "servicerejected"
	TriggerServiceResubmission     TriggerKind = "serviceresubmission"
	TriggerServiceDelivery         TriggerKind = "servicedelivery"
	TriggerServiceRevisionRequest  TriggerKind = "servicerevisionrequest"
	TriggerServiceRevisionDelivery TriggerKind = "servicerevisiondelivery"
	TriggerServiceComplete         TriggerKind = "servicecomplete"
	TriggerServiceAddonPurchase    TriggerKind = "serviceaddonpurchase"
	TriggerServiceAddonRequest     TriggerKind = "serviceaddonrequest"
	TriggerServiceAddonDelivery    TriggerKind = "serviceaddondelivery"
	TriggerContactEnquiry          TriggerKind = "contactenquiry"
)

// AllTriggers lists every trigger kind. The dispatcher's registry is checked
// against this list in tests.
var AllTriggers = []TriggerKind{
	TriggerServicePurchase,
	TriggerServiceAssign,
	TriggerServiceReview,
	TriggerServiceReuploadRequest,
	TriggerServiceReupload,
	TriggerServiceSubmitted,
	TriggerServiceRejected,
	TriggerServiceResubmission,
	TriggerServiceDelivery,
	TriggerServiceRevisionRequest,
	TriggerServiceRevisionDelivery,
	TriggerServiceComplete,
	TriggerServiceAddonPurchase,
	TriggerServiceAddonRequest,
	TriggerServiceAddonDelivery,
	TriggerContactEnquiry,
}

// IsKnownTrigger reports whether the value is a member of the trigger enum.
func IsKnownTrigger(kind TriggerKind) bool {
	for _, known := range AllTriggers {
		if kind == known {
			return true
		}
	}
	return false
}
