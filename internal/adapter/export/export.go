package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
	"github.com/samber/lo"
)

var _ port.ReportSink = (*JSONReportWriter)(nil)
var _ port.ReportSink = (*URLListWriter)(nil)

const filePerm = 0o644

// A JSONReportWriter stores the whole report as indented JSON.
type JSONReportWriter struct {
	path string
}

func NewJSONReportWriter(path string) JSONReportWriter {
	return JSONReportWriter{path}
}

func (w JSONReportWriter) SinkReport(ctx context.Context, r domain.Report) error {
	const op = "JSONReportWriter.SinkReport"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.MarshalIndent(toReport(r), "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(w.path, append(data, '\n'), filePerm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("report exported", "path", w.path)
	return nil
}

// A URLListWriter stores the first image URL of every populated product,
// one per line.
type URLListWriter struct {
	path string
}

func NewURLListWriter(path string) URLListWriter {
	return URLListWriter{path}
}

func (w URLListWriter) SinkReport(ctx context.Context, r domain.Report) error {
	const op = "URLListWriter.SinkReport"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	urls := imageURLs(r.Findings)
	content := strings.Join(urls, "\n")
	if len(urls) != 0 {
		content += "\n"
	}

	if err := os.WriteFile(w.path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("image urls exported", "path", w.path, "nURLs", len(urls))
	return nil
}

func imageURLs(fs []domain.Finding) []string {
	populated := lo.Filter(fs, func(f domain.Finding, _ int) bool {
		return f.Classification == domain.Populated
	})
	return lo.Map(populated, func(f domain.Finding, _ int) string {
		return f.Product.FirstImage()
	})
}
