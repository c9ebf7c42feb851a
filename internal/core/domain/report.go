package domain

import "time"

type (
	// A Finding is the outcome of checking one product.
	Finding struct {
		Product        Product
		Classification Classification
		ImageCount     int
		KnownStorage   bool
		Consistent     bool
		Probe          *ImageProbe
	}

	// An ImageProbe is the answer to a HEAD request on an image URL.
	ImageProbe struct {
		URL           string
		Accessible    bool
		StatusCode    int
		ContentType   string
		ContentLength int64
		CacheStatus   string
		Err           string
	}

	// A TargetCheck is the outcome of fetching one product by id.
	TargetCheck struct {
		ProductID int
		Fetched   bool
		Finding   Finding
		Failure   string
	}

	Summary struct {
		Total        int
		Populated    int
		Missing      int
		MissingField int
		EmptyField   int
		KnownStorage int
		Inconsistent int
		Probed       int
		Accessible   int
		Inaccessible int
		ProbedBytes  int64
	}

	Report struct {
		RunID      string
		StartedAt  time.Time
		FinishedAt time.Time
		BaseURL    string
		KnownHost  string
		Strict     bool
		Findings   []Finding
		Summary    Summary
		Target     *TargetCheck
		Failure    FailureKind
		FailureMsg string
		// FailureStatus is the HTTP status behind an UnexpectedStatus failure.
		FailureStatus int
		OK            bool
	}
)

// ExitCode maps the overall result to the process exit status.
func (r Report) ExitCode() int {
	if r.OK {
		return 0
	}
	return 1
}

// ProductsFetched reports whether the product list was received.
func (r Report) ProductsFetched() bool {
	return r.Findings != nil
}

// Probed reports whether image probing ran for this report.
func (r Report) Probed() bool {
	return r.Summary.Probed > 0
}
