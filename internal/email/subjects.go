package email

const (
	subjectServicePurchase         = "Your service purchase is confirmed"
	subjectServicePurchaseAdminFmt = "New service purchase by %s"
	subjectServiceAssignFmt        = "You have been assigned to %s"
	subjectServiceReviewFmt        = "Files approved for %s, work can start"
	subjectServiceReuploadRequest  = "Action needed: please re-upload your files"
	subjectServiceReuploadedFmt    = "Files re-uploaded for %s"
	subjectServiceSubmittedFmt     = "Delivery submitted for internal review: %s"
	subjectServiceRejectedFmt      = "Internal review feedback for %s"
	subjectServiceResubmissionFmt  = "Resubmitted for internal review: %s"
	subjectServiceDeliveryFmt      = "Your project %s has been delivered"
	subjectServiceRevisionRequest  = "New revision request"
	subjectServiceRevisionDelivery = "Your revision has been delivered"
	subjectServiceCompleteFmt      = "Project %s completed"
	subjectServiceAddonPurchase    = "Your add-on purchase is confirmed"
	subjectServiceAddonRequestFmt  = "Add-on purchased for %s"
	subjectServiceAddonDeliveryFmt = "Your add-on for %s is ready"
	subjectContactEnquiry          = "New contact enquiry"
)
