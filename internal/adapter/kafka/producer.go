package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
	"github.com/niksmo/catalog-imgcheck/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ReportSink = (*ReportProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A ReportProducer publishes the run outcome as one [schema.ReportV1]
// record keyed by run id.
type ReportProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewReportProducer(
	opts ...ProducerOpt,
) (ReportProducer, error) {
	const op = "NewReportProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ReportProducer{}, opErr(err, op)
		}
	}

	opPrefix := "ReportProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return ReportProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p ReportProducer) Close() {
	p.producer.close()
}

func (p ReportProducer) SinkReport(
	ctx context.Context, r domain.Report,
) error {
	const op = "SinkReport"
	log := slog.With("op", makeOp(p.opPrefix, op))

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	rec, err := p.createRecord(r)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, rec); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	log.Info("report produced", "runID", r.RunID)
	return nil
}

func (p ReportProducer) createRecord(
	r domain.Report,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := p.toSchema(r)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.RunID), Value: b}, nil
}

func (ReportProducer) toSchema(r domain.Report) schema.ReportV1 {
	return reportToSchemaV1(r)
}
