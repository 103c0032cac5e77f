package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

const prettyJSONEnv = "DOTHOOK_PRETTY_JSON"

// Response represents a standard JSON response
type Response struct {
	SchemaVersion string      `json:"schema_version"`
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
	ErrorCode     string      `json:"error_code,omitempty"`
}

// codedError is satisfied by errors that carry a stable machine code.
type codedError interface {
	error
	ErrorCode() string
}

// Success wraps a successful response with data
func Success(data interface{}) Response {
	return Response{
		SchemaVersion: "v1",
		Success:       true,
		Data:          data,
	}
}

// Error wraps an error in a response
func Error(err error) Response {
	resp := Response{
		SchemaVersion: "v1",
		Success:       false,
		Error:         err.Error(),
	}
	var coded codedError
	if errors.As(err, &coded) {
		resp.ErrorCode = coded.ErrorCode()
	}
	return resp
}

// Config controls where and how JSON is written.
type Config struct {
	Writer io.Writer
	Pretty bool
}

// DefaultConfig writes to stdout; pretty output is opt-in via DOTHOOK_PRETTY_JSON.
func DefaultConfig() Config {
	return ConfigFor(os.Stdout)
}

// ConfigFor is DefaultConfig with a different writer.
func ConfigFor(w io.Writer) Config {
	v := os.Getenv(prettyJSONEnv)
	return Config{Writer: w, Pretty: v == "1" || v == "true"}
}

// PrintWith encodes v using cfg.
func PrintWith(cfg Config, v interface{}) error {
	enc := json.NewEncoder(cfg.Writer)
	enc.SetEscapeHTML(false)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Print prints a value as JSON to stdout
func Print(v interface{}) error {
	// Compact by default: output is mostly consumed by scripts.
	return PrintWith(DefaultConfig(), v)
}

// PrintSuccess prints a success response
func PrintSuccess(data interface{}) error {
	return Print(Success(data))
}

// PrintError prints an error response
func PrintError(err error) error {
	return Print(Error(err))
}
