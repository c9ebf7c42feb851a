package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
)

var _ port.Validator = (*Service)(nil)

var ErrNilFetcher = errors.New("products fetcher is nil")

type Config struct {
	BaseURL   string
	KnownHost string
	TargetID  int
	Probe     bool
	Strict    bool
}

type Service struct {
	cfg     Config
	fetcher port.ProductsFetcher
	prober  port.ImageProber
}

// New returns the validator service.
//
// The prober is required only when cfg.Probe is set.
func New(
	cfg Config, fetcher port.ProductsFetcher, prober port.ImageProber,
) (Service, error) {
	const op = "service.New"

	if fetcher == nil {
		return Service{}, fmt.Errorf("%s: %w", op, ErrNilFetcher)
	}

	if cfg.Probe && prober == nil {
		return Service{}, fmt.Errorf("%s: image prober is nil", op)
	}

	return Service{cfg: cfg, fetcher: fetcher, prober: prober}, nil
}

// Validate performs one validation run.
//
// Failures are recorded on the returned report, never returned.
func (s Service) Validate(ctx context.Context) (r domain.Report) {
	const op = "Service.Validate"
	log := slog.With("op", op)

	r = domain.Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		BaseURL:   s.cfg.BaseURL,
		KnownHost: s.cfg.KnownHost,
		Strict:    s.cfg.Strict,
	}
	defer func() {
		r.FinishedAt = time.Now()
		log.Info(
			"validation finished",
			"runID", r.RunID, "ok", r.OK, "failure", r.Failure,
		)
	}()

	if err := ctx.Err(); err != nil {
		s.fail(&r, fmt.Errorf("%s: %w", op, err))
		return r
	}

	products, err := s.fetcher.FetchProducts(ctx)
	if err != nil {
		s.fail(&r, fmt.Errorf("%s: %w", op, err))
		return r
	}
	log.Info("products fetched", "nProducts", len(products))

	r.Findings = ClassifyAll(products, s.cfg.KnownHost)
	r.Summary = Summarize(r.Findings)

	target, err := s.checkTarget(ctx)
	if err != nil {
		s.fail(&r, fmt.Errorf("%s: %w", op, err))
		return r
	}
	r.Target = &target

	if s.cfg.Probe {
		s.probeAll(ctx, r.Findings)
		r.Summary = Summarize(r.Findings)
	}

	r.OK = s.passed(r.Summary)
	return r
}

// checkTarget fetches the target product and classifies it.
//
// A non-200 answer is recorded on the check and does not fail the run.
func (s Service) checkTarget(ctx context.Context) (domain.TargetCheck, error) {
	const op = "Service.checkTarget"
	log := slog.With("op", op)

	tc := domain.TargetCheck{ProductID: s.cfg.TargetID}

	p, err := s.fetcher.FetchProduct(ctx, s.cfg.TargetID)
	if err != nil {
		if domain.FailureOf(err) == domain.UnexpectedStatus {
			log.Warn("target product unavailable", "id", s.cfg.TargetID, "err", err)
			tc.Failure = err.Error()
			return tc, nil
		}
		return tc, fmt.Errorf("%s: %w", op, err)
	}

	tc.Fetched = true
	tc.Finding = Classify(p, s.cfg.KnownHost)
	return tc, nil
}

func (s Service) probeAll(ctx context.Context, fs []domain.Finding) {
	const op = "Service.probeAll"
	log := slog.With("op", op)

	for i := range fs {
		if ctx.Err() != nil {
			log.Warn("probing interrupted", "err", ctx.Err())
			return
		}
		if fs[i].Classification != domain.Populated {
			continue
		}
		probe := s.prober.ProbeImage(ctx, fs[i].Product.FirstImage())
		fs[i].Probe = &probe
	}
}

func (s Service) passed(sum domain.Summary) bool {
	if sum.Missing != 0 {
		return false
	}
	if s.cfg.Strict {
		return sum.Inconsistent == 0 && sum.Inaccessible == 0
	}
	return true
}

func (s Service) fail(r *domain.Report, err error) {
	const op = "Service.fail"
	log := slog.With("op", op)

	r.Failure = domain.FailureOf(err)
	r.FailureMsg = err.Error()
	r.FailureStatus = domain.StatusCodeOf(err)
	r.OK = false
	log.Error("validation failed", "kind", r.Failure, "err", err)
}
