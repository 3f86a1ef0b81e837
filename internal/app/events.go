package app

// SubmissionSucceededEvent is produced by the command returned from Submit
// when the generation service returns new content.
type SubmissionSucceededEvent struct {
	// Content replaces the draft's content.
	Content string
}

// SubmissionFailedEvent is produced by the command returned from Submit when
// the remote call fails for any reason.
type SubmissionFailedEvent struct {
	// Err is the failure. Its Error() text is shown to the user verbatim.
	Err error
}
