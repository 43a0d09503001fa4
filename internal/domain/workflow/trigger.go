package workflow

// Trigger represents an event that can cause a draft state transition
type Trigger string

const (
	// TriggerSelectFile fires when the user picks an attachment that passes validation
	TriggerSelectFile Trigger = "SELECT_FILE"

	// TriggerRejectFile fires when the picked attachment fails validation
	TriggerRejectFile Trigger = "REJECT_FILE"

	// TriggerResolveUpload fires when the attachment upload settles
	TriggerResolveUpload Trigger = "RESOLVE_UPLOAD"

	// TriggerSubmit fires when the form is submitted
	TriggerSubmit Trigger = "SUBMIT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
