package export

import (
	"time"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/samber/lo"
)

type (
	report struct {
		RunID         string       `json:"run_id"`
		StartedAt     time.Time    `json:"started_at"`
		FinishedAt    time.Time    `json:"finished_at"`
		BaseURL       string       `json:"base_url"`
		KnownHost     string       `json:"known_host"`
		Strict        bool         `json:"strict"`
		OK            bool         `json:"ok"`
		Failure       string       `json:"failure,omitempty"`
		FailureMsg    string       `json:"failure_message,omitempty"`
		FailureStatus int          `json:"failure_status,omitempty"`
		Summary       summary      `json:"summary"`
		Target        *targetCheck `json:"target,omitempty"`
		Products      []finding    `json:"products"`
	}

	summary struct {
		Total        int   `json:"total"`
		Populated    int   `json:"populated"`
		Missing      int   `json:"missing"`
		MissingField int   `json:"missing_field"`
		EmptyField   int   `json:"empty_field"`
		KnownStorage int   `json:"known_storage"`
		Inconsistent int   `json:"inconsistent"`
		Probed       int   `json:"probed"`
		Accessible   int   `json:"accessible"`
		Inaccessible int   `json:"inaccessible"`
		ProbedBytes  int64 `json:"probed_bytes"`
	}

	finding struct {
		ProductID      int         `json:"product_id"`
		Name           string      `json:"name"`
		ImageURL       *string     `json:"image_url"`
		Images         []string    `json:"images"`
		Classification string      `json:"classification"`
		ImageCount     int         `json:"image_count"`
		KnownStorage   bool        `json:"known_storage"`
		Consistent     bool        `json:"consistent"`
		Probe          *imageProbe `json:"probe,omitempty"`
	}

	imageProbe struct {
		URL           string `json:"url"`
		Accessible    bool   `json:"accessible"`
		StatusCode    int    `json:"status_code"`
		ContentType   string `json:"content_type,omitempty"`
		ContentLength int64  `json:"content_length"`
		CacheStatus   string `json:"cache_status,omitempty"`
		Err           string `json:"error,omitempty"`
	}

	targetCheck struct {
		ProductID int      `json:"product_id"`
		Fetched   bool     `json:"fetched"`
		Failure   string   `json:"failure,omitempty"`
		Finding   *finding `json:"finding,omitempty"`
	}
)

func toReport(r domain.Report) report {
	v := report{
		RunID:         r.RunID,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		BaseURL:       r.BaseURL,
		KnownHost:     r.KnownHost,
		Strict:        r.Strict,
		OK:            r.OK,
		Failure:       string(r.Failure),
		FailureMsg:    r.FailureMsg,
		FailureStatus: r.FailureStatus,
		Summary:       summary(r.Summary),
		Products: lo.Map(r.Findings, func(f domain.Finding, _ int) finding {
			return toFinding(f)
		}),
	}

	if r.Target != nil {
		tc := targetCheck{
			ProductID: r.Target.ProductID,
			Fetched:   r.Target.Fetched,
			Failure:   r.Target.Failure,
		}
		if r.Target.Fetched {
			f := toFinding(r.Target.Finding)
			tc.Finding = &f
		}
		v.Target = &tc
	}
	return v
}

func toFinding(f domain.Finding) finding {
	v := finding{
		ProductID:      f.Product.ID,
		Name:           f.Product.Name,
		ImageURL:       f.Product.ImageURL,
		Images:         f.Product.Images,
		Classification: string(f.Classification),
		ImageCount:     f.ImageCount,
		KnownStorage:   f.KnownStorage,
		Consistent:     f.Consistent,
	}
	if f.Probe != nil {
		p := imageProbe(*f.Probe)
		v.Probe = &p
	}
	return v
}
