package generation

// Request is the payload sent for one submission. It is built once from the
// draft snapshot and passed by value, so it never changes after construction.
type Request struct {
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Result is a successful generation outcome.
type Result struct {
	Content string `json:"content"`
}
