package service

import (
	"slices"
	"strings"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/samber/lo"
)

// Classify checks the Images field of one product.
func Classify(p domain.Product, knownHost string) domain.Finding {
	f := domain.Finding{
		Product:    p,
		ImageCount: len(p.Images),
		Consistent: Consistent(p),
	}

	switch {
	case p.Images == nil:
		f.Classification = domain.MissingField
	case len(p.Images) == 0:
		f.Classification = domain.EmptyField
	default:
		f.Classification = domain.Populated
		f.KnownStorage = IsKnownStorage(p.Images[0], knownHost)
	}
	return f
}

func ClassifyAll(ps []domain.Product, knownHost string) []domain.Finding {
	return lo.Map(ps, func(p domain.Product, _ int) domain.Finding {
		return Classify(p, knownHost)
	})
}

// IsKnownStorage is a plain substring match on the URL.
func IsKnownStorage(url, knownHost string) bool {
	return knownHost != "" && strings.Contains(url, knownHost)
}

// Consistent reports whether Images is exactly what the backend derives
// from the stored image URL. An absent Images field is never consistent.
func Consistent(p domain.Product) bool {
	if p.Images == nil {
		return false
	}
	return slices.Equal(p.Images, p.ExpectedImages())
}

func Summarize(fs []domain.Finding) (s domain.Summary) {
	s.Total = len(fs)
	s.MissingField = lo.CountBy(fs, func(f domain.Finding) bool {
		return f.Classification == domain.MissingField
	})
	s.EmptyField = lo.CountBy(fs, func(f domain.Finding) bool {
		return f.Classification == domain.EmptyField
	})
	s.Missing = s.MissingField + s.EmptyField
	s.Populated = s.Total - s.Missing
	s.KnownStorage = lo.CountBy(fs, func(f domain.Finding) bool {
		return f.KnownStorage
	})
	s.Inconsistent = lo.CountBy(fs, func(f domain.Finding) bool {
		return !f.Consistent
	})

	for _, f := range fs {
		if f.Probe == nil {
			continue
		}
		s.Probed++
		if f.Probe.Accessible {
			s.Accessible++
		} else {
			s.Inaccessible++
		}
		s.ProbedBytes += f.Probe.ContentLength
	}
	return s
}
