package port

import (
	"context"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
)

type ProductsFetcher interface {
	FetchProducts(context.Context) ([]domain.Product, error)
	FetchProduct(ctx context.Context, id int) (domain.Product, error)
}

type ImageProber interface {
	ProbeImage(ctx context.Context, url string) domain.ImageProbe
}

type ReportSink interface {
	SinkReport(context.Context, domain.Report) error
}

type ReportPrinter interface {
	PrintReport(domain.Report)
}

type Validator interface {
	Validate(context.Context) domain.Report
}
