// Package output renders command reports. Reports go to stdout in the
// format chosen with --output so scripts can parse them; prompts, progress
// and logs are written to stderr by their own packages.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how reports are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted --output values.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat maps an --output value to a Format, ignoring case.
// Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (must be one of %s)", s, strings.Join(Formats(), ", "))
}

// Writer renders reports to a single stream.
type Writer struct {
	format Format
	w      io.Writer
}

// NewWriter returns a Writer rendering to w.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{format: format, w: w}
}

// Format reports the selected format. Commands use it to decide whether
// human-only decoration such as progress bars is wanted.
func (w *Writer) Format() Format {
	return w.format
}

// Write renders one report. Text rendering uses the report's String method.
func (w *Writer) Write(report interface{}) error {
	switch w.format {
	case FormatJSON:
		return writeJSON(w.w, report)
	case FormatYAML:
		return writeYAML(w.w, report)
	default:
		return writeText(w.w, report)
	}
}

func writeJSON(w io.Writer, report interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// yaml.v3 buffers the document until Close
func writeYAML(w io.Writer, report interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func writeText(w io.Writer, report interface{}) error {
	s, ok := report.(fmt.Stringer)
	if !ok {
		return fmt.Errorf("%T has no text form", report)
	}
	_, err := fmt.Fprintln(w, s.String())
	return err
}
