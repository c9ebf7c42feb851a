// Package console renders validation reports for a human reader.
package console

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/charmbracelet/lipgloss"
	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
)

var _ port.ReportPrinter = (*Printer)(nil)

const ruleWidth = 70

type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

// A Printer writes reports as plain text.
//
// Colors are used only when the writer is a terminal.
type Printer struct {
	w  io.Writer
	st styles
}

func NewPrinter(w io.Writer) Printer {
	r := lipgloss.NewRenderer(w)
	return Printer{
		w: w,
		st: styles{
			title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
			ok:    r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
			warn:  r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
			fail:  r.NewStyle().Foreground(lipgloss.Color("#e53935")),
			muted: r.NewStyle().Faint(true),
		},
	}
}

func (p Printer) PrintReport(r domain.Report) {
	p.header(r)

	p.printf("Test 1: fetching all products...\n")
	if !r.ProductsFetched() {
		p.printFailure(r)
		return
	}
	p.printf("%s API responded: %d products\n\n", p.st.ok.Render("OK"), r.Summary.Total)

	p.printf("Test 2: checking the Images field of every product...\n")
	for _, f := range r.Findings {
		p.printFinding(f)
	}
	p.blank()
	p.printSummary(r.Summary)

	if r.Target != nil {
		p.printTarget(r.KnownHost, *r.Target)
	} else {
		p.printf("Test 3: checking the target product...\n")
	}

	if r.Probed() {
		p.printProbes(r)
	}

	p.rule("=")
	p.printVerdict(r)
}

func (p Printer) header(r domain.Report) {
	p.rule("=")
	p.printf("%s\n", p.st.title.Render("Images field validation - product API"))
	p.printf("%s\n", p.st.muted.Render(r.BaseURL))
	p.rule("=")
	p.blank()
}

func (p Printer) printFinding(f domain.Finding) {
	name := f.Product.Name
	switch f.Classification {
	case domain.MissingField:
		p.printf("   %s %s: Images field is missing\n", p.st.fail.Render("FAIL"), name)
	case domain.EmptyField:
		p.printf("   %s %s: Images field is empty\n", p.st.warn.Render("WARN"), name)
	default:
		line := fmt.Sprintf("%d image(s)", f.ImageCount)
		if f.KnownStorage {
			line += " - known storage"
		}
		p.printf("   %s %s: %s\n", p.st.ok.Render("OK  "), name, line)
	}
	if !f.Consistent && f.Classification != domain.MissingField {
		p.printf("        %s\n", p.st.muted.Render("Images does not match URLImagen"))
	}
}

func (p Printer) printSummary(s domain.Summary) {
	p.rule("=")
	p.printf("%s\n", p.st.title.Render("VALIDATION SUMMARY"))
	p.rule("=")
	p.row("Total products:", s.Total)
	p.row("With Images populated:", s.Populated)
	p.row("Without Images or empty:", s.Missing)
	p.row("With known storage images:", s.KnownStorage)
	p.row("Inconsistent with URLImagen:", s.Inconsistent)
	p.rule("=")
	p.blank()
}

func (p Printer) printTarget(knownHost string, tc domain.TargetCheck) {
	p.printf("Test 3: checking product ID %d...\n", tc.ProductID)

	if !tc.Fetched {
		p.printf("   %s could not fetch product ID %d: %s\n",
			p.st.fail.Render("FAIL"), tc.ProductID, tc.Failure)
		p.blank()
		return
	}

	prod := tc.Finding.Product
	p.printf("   Product: %s\n", prod.Name)
	p.printf("   URLImagen: %s\n", formatURL(prod.ImageURL))
	p.printf("   Images: %s\n", formatImages(prod.Images))

	if tc.Finding.KnownStorage {
		p.printf("   %s Images field points to %s\n", p.st.ok.Render("OK"), knownHost)
	} else {
		p.printf("   %s Images field has no %s URL\n", p.st.fail.Render("FAIL"), knownHost)
	}
	p.blank()
}

func (p Printer) printProbes(r domain.Report) {
	p.printf("Test 4: probing image URLs...\n")

	probed := make([]domain.Finding, 0, r.Summary.Probed)
	for _, f := range r.Findings {
		if f.Probe != nil {
			probed = append(probed, f)
		}
	}

	var missing []domain.Finding
	for i, f := range probed {
		pr := f.Probe
		n := fmt.Sprintf("[%d/%d]", i+1, len(probed))
		switch {
		case pr.Accessible:
			p.printf("   %s %s ID %d - %s\n", p.st.ok.Render("OK  "), n, f.Product.ID, f.Product.Name)
			p.printf("        size: %s, type: %s\n", formatSize(pr.ContentLength), pr.ContentType)
			if pr.CacheStatus != "" {
				p.printf("        cache: %s\n", pr.CacheStatus)
			}
		case pr.StatusCode == 404:
			missing = append(missing, f)
			p.printf("   %s %s ID %d - %s\n", p.st.fail.Render("FAIL"), n, f.Product.ID, f.Product.Name)
			p.printf("        image not found (404)\n")
		default:
			p.printf("   %s %s ID %d - %s\n", p.st.warn.Render("WARN"), n, f.Product.ID, f.Product.Name)
			p.printf("        error: %s\n", pr.Err)
		}
		p.printf("        %s\n", p.st.muted.Render(pr.URL))
	}
	p.blank()

	s := r.Summary
	p.row("Accessible images:", fmt.Sprintf("%d (%s)", s.Accessible, percent(s.Accessible, s.Probed)))
	p.row("Inaccessible images:", fmt.Sprintf("%d (%s)", s.Inaccessible, percent(s.Inaccessible, s.Probed)))
	if s.ProbedBytes > 0 {
		p.row("Total image size:", formatSize(s.ProbedBytes))
	}

	if len(missing) > 0 {
		p.blank()
		p.printf("   Upload these files to the image storage:\n")
		for _, f := range missing {
			p.printf("      - %s (product: %s)\n", path.Base(f.Probe.URL), f.Product.Name)
		}
	}
	p.blank()
}

func (p Printer) printVerdict(r domain.Report) {
	if r.Failure != domain.NoFailure {
		p.printFailure(r)
		return
	}

	if r.OK {
		p.printf("%s\n", p.st.ok.Render("VALIDATION PASSED: every product has the Images field"))
		return
	}

	s := r.Summary
	if s.Missing > 0 {
		p.printf("%s\n", p.st.warn.Render(
			fmt.Sprintf("WARNING: %d product(s) without Images", s.Missing)))
	}
	if r.Strict && s.Inconsistent > 0 {
		p.printf("%s\n", p.st.warn.Render(
			fmt.Sprintf("WARNING: %d product(s) with Images not matching URLImagen", s.Inconsistent)))
	}
	if r.Strict && s.Inaccessible > 0 {
		p.printf("%s\n", p.st.warn.Render(
			fmt.Sprintf("WARNING: %d image(s) not accessible", s.Inaccessible)))
	}
}

func (p Printer) printFailure(r domain.Report) {
	switch r.Failure {
	case domain.ConnectionFailure:
		p.printf("%s\n", p.st.fail.Render("ERROR: cannot connect to the API"))
		p.printf("   make sure the backend is running at %s\n", r.BaseURL)
	case domain.UnexpectedStatus:
		p.printf("%s\n", p.st.fail.Render(
			fmt.Sprintf("ERROR: API returned status %d", r.FailureStatus)))
	default:
		p.printf("%s\n", p.st.fail.Render("ERROR: "+r.FailureMsg))
	}
}

func (p Printer) row(label string, v any) {
	p.printf("%-32s %v\n", label, v)
}

func (p Printer) rule(ch string) {
	p.printf("%s\n", strings.Repeat(ch, ruleWidth))
}

func (p Printer) blank() {
	p.printf("\n")
}

func (p Printer) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.w, format, a...)
}

func formatURL(u *string) string {
	if u == nil {
		return "null"
	}
	return *u
}

func formatImages(images []string) string {
	if images == nil {
		return "null"
	}
	return "[" + strings.Join(images, ", ") + "]"
}

func formatSize(n int64) string {
	if n <= 0 {
		return "unknown"
	}
	return datasize.ByteSize(n).HumanReadable()
}

func percent(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)*100/float64(total))
}
