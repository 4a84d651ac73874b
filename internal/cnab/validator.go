package cnab

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ValidationResult is the outcome of a structural pass over a file.
type ValidationResult struct {
	SizeBytes int64
	Lines     int
	Errors    []StructuralError
}

// OK reports whether the file is structurally valid.
func (r *ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Summary joins all structural violations into a single rejection reason.
func (r *ValidationResult) Summary() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// Validate checks the shape of a CNAB file: every line must be exactly
// LineLength bytes of printable ASCII, the file must not be empty and must
// not exceed MaxFileBytes. Line terminators (LF or CRLF) are not counted.
// It collects every violation rather than stopping at the first.
func Validate(r io.Reader) (*ValidationResult, error) {
	cr := &countingReader{r: io.LimitReader(r, MaxFileBytes+1)}
	sc := bufio.NewScanner(cr)
	sc.Buffer(make([]byte, 0, 4096), MaxFileBytes+2)

	res := &ValidationResult{}
	for sc.Scan() {
		res.Lines++
		line := sc.Bytes()
		if len(line) != LineLength {
			res.Errors = append(res.Errors, StructuralError{
				Line:    res.Lines,
				Message: fmt.Sprintf("expected %d bytes, got %d", LineLength, len(line)),
			})
			continue
		}
		for i, b := range line {
			if b < 0x20 || b > 0x7e {
				res.Errors = append(res.Errors, StructuralError{
					Line:    res.Lines,
					Message: fmt.Sprintf("byte 0x%02x at column %d is not printable ASCII", b, i+1),
				})
				break
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	res.SizeBytes = cr.n
	if cr.n > MaxFileBytes {
		res.Errors = append(res.Errors, StructuralError{
			Message: fmt.Sprintf("file exceeds %d bytes", MaxFileBytes),
		})
	}
	if cr.n == 0 {
		res.Errors = append(res.Errors, StructuralError{Message: "file is empty"})
	}
	return res, nil
}
