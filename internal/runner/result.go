package runner

// Result holds the normalized outcome of a command execution. A spawn
// failure and a non-zero exit are both expressed through StatusCode and
// Stderr rather than as errors.
type Result struct {
	RunID      string   `json:"-"`              // unique identifier for this run
	Command    string   `json:"cmd"`            // the command as requested
	Args       string   `json:"args,omitempty"` // the single argument token, if any
	StatusCode int      `json:"status_code"`    // exit code; 1 on spawn failure
	Stdout     []string `json:"stdout"`         // non-blank stdout lines, in order
	Stderr     []string `json:"stderr"`         // non-blank stderr lines, in order
	Truncated  bool     `json:"truncated,omitempty"`
}
