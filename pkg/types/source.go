package types

import (
	"bytes"
	"crypto/sha1"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"io/fs"
	"strings"
)

// Line endings recognized when splitting a file.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// SourceFile is a file split into lines. Each line keeps its own terminator
// so Bytes reproduces the original content exactly.
type SourceFile struct {
	Path string
	Mode fs.FileMode

	lines []string // text without terminator
	terms []string // terminator of each line: "\n", "\r\n" or ""
}

// NewSourceFile splits content into lines.
func NewSourceFile(path string, content []byte) *SourceFile {
	f := &SourceFile{Path: path, Mode: 0o644}
	rest := content
	for len(rest) > 0 {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			f.lines = append(f.lines, string(rest))
			f.terms = append(f.terms, "")
			break
		}
		line := rest[:i]
		term := LF
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
			term = CRLF
		}
		f.lines = append(f.lines, string(line))
		f.terms = append(f.terms, term)
		rest = rest[i+1:]
	}
	return f
}

// Len returns the number of lines.
func (f *SourceFile) Len() int { return len(f.lines) }

// Line returns line i without its terminator.
func (f *SourceFile) Line(i int) string { return f.lines[i] }

// Terminator returns the terminator of line i.
func (f *SourceFile) Terminator(i int) string { return f.terms[i] }

// Lines returns a copy of all lines without terminators.
func (f *SourceFile) Lines() []string {
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// LineEnding returns the dominant terminator of the file, LF when the file
// has no terminated lines.
func (f *SourceFile) LineEnding() string {
	var lf, crlf int
	for _, t := range f.terms {
		switch t {
		case LF:
			lf++
		case CRLF:
			crlf++
		}
	}
	if crlf > lf {
		return CRLF
	}
	return LF
}

// ReplaceLine sets the text of line i, keeping its terminator.
func (f *SourceFile) ReplaceLine(i int, text string) error {
	if i < 0 || i >= len(f.lines) {
		return fmt.Errorf("line %d out of range [0, %d)", i, len(f.lines))
	}
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("replacement for line %d spans multiple lines", i)
	}
	f.lines[i] = text
	return nil
}

// Bytes joins the lines back together.
func (f *SourceFile) Bytes() []byte {
	var buf bytes.Buffer
	for i, l := range f.lines {
		buf.WriteString(l)
		buf.WriteString(f.terms[i])
	}
	return buf.Bytes()
}

// Clone returns an independent copy.
func (f *SourceFile) Clone() *SourceFile {
	c := &SourceFile{Path: f.Path, Mode: f.Mode}
	c.lines = append([]string(nil), f.lines...)
	c.terms = append([]string(nil), f.terms...)
	return c
}

// BlobID is a git-style SHA-1 content hash.
type BlobID [20]byte

// ComputeBlobID returns SHA-1("blob {len}\0{content}"), the same id git
// assigns to the content.
func ComputeBlobID(content []byte) BlobID {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)

	var id BlobID
	copy(id[:], h.Sum(nil))
	return id
}

// Hex returns the 40-character hex form.
func (id BlobID) Hex() string { return hex.EncodeToString(id[:]) }

func (id BlobID) String() string { return id.Hex() }

// ParseBlobID parses the hex form produced by Hex.
func ParseBlobID(s string) (BlobID, error) {
	var id BlobID
	if len(s) != 2*len(id) {
		return id, fmt.Errorf("invalid blob ID length: expected %d, got %d", 2*len(id), len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid hex string: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id BlobID) MarshalText() ([]byte, error) { return []byte(id.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *BlobID) UnmarshalText(b []byte) error {
	parsed, err := ParseBlobID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer.
func (id BlobID) Value() (driver.Value, error) { return id.Hex(), nil }

// Scan implements sql.Scanner.
func (id *BlobID) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into BlobID", value)
	}
	parsed, err := ParseBlobID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
