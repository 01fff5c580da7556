package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound reports that a file has no comment block or no notice in it.
// It is an expected outcome, not a failure.
var ErrNotFound = errors.New("not found")

// ParseError reports a notice whose year text is malformed.
// The file is skipped; the batch continues.
type ParseError struct {
	Path string
	Line int // 0-based
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v: %q", e.Line+1, e.Err, e.Text)
	}
	return fmt.Sprintf("%s:%d: %v: %q", e.Path, e.Line+1, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a failure to save a rewritten file.
// The file's update is abandoned; the batch continues.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Status is the terminal state of one file.
type Status int

const (
	StatusNotFound Status = iota
	StatusParseError
	StatusUnchanged
	StatusRewritten
	StatusWriteError
	StatusOutdated // check mode: would be rewritten
	StatusSkipped  // incremental mode: content already up to date
)

var statusNames = map[Status]string{
	StatusNotFound:   "not_found",
	StatusParseError: "parse_error",
	StatusUnchanged:  "unchanged",
	StatusRewritten:  "rewritten",
	StatusWriteError: "write_error",
	StatusOutdated:   "outdated",
	StatusSkipped:    "skipped",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Failed reports whether the status is a hard error.
func (s Status) Failed() bool {
	return s == StatusParseError || s == StatusWriteError
}

// Result is the outcome of processing one file.
type Result struct {
	Path     string
	BlobID   BlobID
	Year     int // year the notice was compared against
	Status   Status
	Block    *CommentBlock
	Notice   *Notice
	Decision Decision
	Err      error
}

// MarshalJSON renders Err as a string.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Path    string `json:"path"`
		BlobID  BlobID `json:"blob_id"`
		Year    int    `json:"year"`
		Status  Status `json:"status"`
		Line    *int   `json:"line,omitempty"`
		Owner   string `json:"owner,omitempty"`
		OldLine string `json:"old_line,omitempty"`
		NewLine string `json:"new_line,omitempty"`
		Error   string `json:"error,omitempty"`
	}{
		Path:   r.Path,
		BlobID: r.BlobID,
		Year:   r.Year,
		Status: r.Status,
	}
	if r.Notice != nil {
		line := r.Notice.Line + 1
		out.Line = &line
		out.Owner = r.Notice.Owner
		out.OldLine = r.Notice.Text
		if r.Decision.Changed {
			out.NewLine = r.Decision.NewLine
		}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
