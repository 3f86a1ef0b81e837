package draft

// Phase is the lifecycle position of the current submission cycle.
type Phase int

const (
	// PhaseIdle is the session start state. Nothing has been submitted yet.
	PhaseIdle Phase = iota

	// PhasePending means a request is in flight. It is the only state in
	// which a new submission is rejected.
	PhasePending

	// PhaseSucceeded means the last request returned content, which has
	// replaced the draft content.
	PhaseSucceeded

	// PhaseFailed means the last request failed. The draft was left as it was.
	PhaseFailed
)

// String returns the lower-case phase name used in logs and JSON output.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Draft is the pair of user-editable template fields. It is a plain value;
// copies never alias the State they were taken from.
type Draft struct {
	Description string `yaml:"description" json:"description"`
	Content     string `yaml:"content" json:"content"`
}

// State holds the editable template fields together with the derived UI
// status (phase and status line). It has no identity beyond the editing
// session and is never persisted.
//
// State is owned by a single goroutine (the Bubble Tea update loop, or the
// caller of app.RunOnce) and does no locking of its own.
type State struct {
	draft  Draft
	phase  Phase
	status string
}

// NewState returns the session start state: both fields empty, PhaseIdle and
// no status message.
func NewState() *State {
	return &State{phase: PhaseIdle}
}

// SetDescription replaces the description. It always succeeds.
func (s *State) SetDescription(text string) {
	s.draft.Description = text
}

// SetContent replaces the content. It always succeeds.
func (s *State) SetContent(text string) {
	s.draft.Content = text
}

// Load replaces both fields at once, e.g. from a seed file.
func (s *State) Load(d Draft) {
	s.draft = d
}

// CurrentDraft returns a snapshot of the two editable fields.
func (s *State) CurrentDraft() Draft {
	return s.draft
}

// Phase reports the current submission phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Pending reports whether a request is in flight.
func (s *State) Pending() bool {
	return s.phase == PhasePending
}

// StatusMessage returns the human-readable status line.
func (s *State) StatusMessage() string {
	return s.status
}

// Begin moves the state to PhasePending with the given status line. The
// fields are not touched.
func (s *State) Begin(status string) {
	s.phase = PhasePending
	s.status = status
}

// Succeed moves the state to PhaseSucceeded and replaces the content in
// place. The description is left untouched: the agent only rewrites content.
func (s *State) Succeed(content, status string) {
	s.draft.Content = content
	s.phase = PhaseSucceeded
	s.status = status
}

// Fail moves the state to PhaseFailed. Both fields keep their values.
func (s *State) Fail(status string) {
	s.phase = PhaseFailed
	s.status = status
}
