// Package report renders an AnalysisResult as a downloadable HTML, JSON, CSV
// or plain-text document.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sovdash/internal/models"
)

// Errors returned by Generate.
var (
	ErrNoData            = errors.New("no analysis data")
	ErrUnsupportedFormat = errors.New("unsupported report format")
)

// Format is a report output format.
type Format string

// Supported formats
const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
)

// FilenamePrefix starts every generated report filename.
const FilenamePrefix = "atomberg_sov_analysis_"

var contentTypes = map[Format]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatJSON: "application/json",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatTXT:  "text/plain; charset=utf-8",
}

// Formats lists the supported formats in display order.
func Formats() []Format {
	return []Format{FormatHTML, FormatJSON, FormatCSV, FormatTXT}
}

// ParseFormat maps user input onto a Format. Empty input selects HTML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatHTML, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Filename builds the download name for a report generated at t. The stamp
// contains only digits and an underscore.
func Filename(format Format, t time.Time) string {
	return FilenamePrefix + t.Format("20060102_150405") + "." + string(format)
}

// Report is a rendered document ready to be written or sent.
type Report struct {
	Format      Format
	Filename    string
	ContentType string
	Content     []byte
}

// Options configure a Generator.
type Options struct {
	AppName string
	Version string
	Now     func() time.Time // defaults to time.Now
}

// Generator renders reports. It is safe for concurrent use.
type Generator struct {
	opts Options
	html *htmlRenderer
}

// New creates a Generator and parses the embedded HTML template.
func New(opts Options) (*Generator, error) {
	if opts.AppName == "" {
		opts.AppName = "Atomberg SoV Dashboard"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h, err := newHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("load report template: %w", err)
	}
	return &Generator{opts: opts, html: h}, nil
}

// Generate renders result in the requested format. A nil result fails with
// ErrNoData and yields no report.
func (g *Generator) Generate(result *models.AnalysisResult, format Format) (*Report, error) {
	if result == nil {
		return nil, ErrNoData
	}
	if _, ok := contentTypes[format]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	now := g.opts.Now()
	var (
		content []byte
		err     error
	)
	switch format {
	case FormatJSON:
		content, err = g.renderJSON(result, now)
	case FormatCSV:
		content, err = renderCSV(buildView(result, g.opts.AppName, now))
	case FormatTXT:
		content = renderText(buildView(result, g.opts.AppName, now))
	case FormatHTML:
		content, err = g.html.render(buildView(result, g.opts.AppName, now))
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	return &Report{
		Format:      format,
		Filename:    Filename(format, now),
		ContentType: contentTypes[format],
		Content:     content,
	}, nil
}
