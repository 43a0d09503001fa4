package workflow

// NewDraftMachine builds the state machine governing a single new-bill draft.
//
// A submit is only permitted once the attachment upload has settled (STAGED);
// firing TriggerSubmit while the upload is still in flight yields
// ErrInvalidTransition, which the submission controller surfaces instead of
// letting an incomplete record through. Re-selecting a file restarts the
// upload leg; a rejected re-selection drops the draft back to IDLE.
func NewDraftMachine() StateMachine {
	builder := NewBuilder()

	builder.Configure(StateIdle).
		Permit(TriggerSelectFile, StateUploading).
		Permit(TriggerRejectFile, StateIdle)

	builder.Configure(StateUploading).
		Permit(TriggerSelectFile, StateUploading).
		Permit(TriggerRejectFile, StateIdle).
		Permit(TriggerResolveUpload, StateStaged)

	builder.Configure(StateStaged).
		Permit(TriggerSelectFile, StateUploading).
		Permit(TriggerRejectFile, StateIdle).
		Permit(TriggerSubmit, StateSubmitted)

	return builder.Build(StateIdle)
}
