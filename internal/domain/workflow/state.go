package workflow

// State represents a stage in the new-bill draft lifecycle
type State string

const (
	// StateIdle means no attachment has been accepted yet
	StateIdle State = "IDLE"

	// StateUploading means an attachment was accepted and its upload is in flight
	StateUploading State = "UPLOADING"

	// StateStaged means the upload resolved and the draft carries fileUrl/key
	StateStaged State = "STAGED"

	// StateSubmitted means the bill was handed off to the persistence service
	StateSubmitted State = "SUBMITTED"
)

var validStates = map[State]bool{
	StateIdle:      true,
	StateUploading: true,
	StateStaged:    true,
	StateSubmitted: true,
}

var terminalStates = map[State]bool{
	StateSubmitted: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a known draft state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
