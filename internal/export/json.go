package export

import (
	"encoding/json"
)

// FailureReport is written in place of the quiz when a run fails.
type FailureReport struct {
	Error     string `json:"error"`
	RawOutput string `json:"raw_output"`
}

// MarshalIndent encodes v with two-space indentation and a trailing newline.
func MarshalIndent(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
