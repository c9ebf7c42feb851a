package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
	"github.com/niksmo/catalog-imgcheck/pkg/schema"
)

var _ port.ReportSink = (*FindingsEmitter)(nil)

// findingCodec adapts a registry [Serde] to [goka.Codec].
type findingCodec struct {
	serde Serde
}

func (c findingCodec) Encode(value any) ([]byte, error) {
	const op = "findingCodec.Encode"
	if _, ok := value.(schema.FindingV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(value)
}

func (c findingCodec) Decode(data []byte) (any, error) {
	const op = "findingCodec.Decode"
	var v schema.FindingV1
	if err := c.serde.Decode(data, &v); err != nil {
		return nil, opErr(err, op)
	}
	return v, nil
}

// A FindingsEmitter emits one [schema.FindingV1] per checked product,
// keyed by product id.
type FindingsEmitter struct {
	ge *goka.Emitter
}

func NewFindingsEmitter(
	brokers []string,
	topic string,
	serde Serde,
	opts ...goka.EmitterOption,
) (FindingsEmitter, error) {
	const op = "NewFindingsEmitter"

	if serde == nil {
		return FindingsEmitter{}, opErr(errors.New("serde is nil"), op)
	}

	ge, err := goka.NewEmitter(
		brokers, goka.Stream(topic), findingCodec{serde}, opts...,
	)
	if err != nil {
		return FindingsEmitter{}, opErr(err, op)
	}
	return FindingsEmitter{ge}, nil
}

func (e FindingsEmitter) SinkReport(
	ctx context.Context, r domain.Report,
) error {
	const op = "FindingsEmitter.SinkReport"
	log := slog.With("op", op)

	for _, f := range r.Findings {
		if err := ctx.Err(); err != nil {
			return opErr(err, op)
		}
		s := findingToSchemaV1(r.RunID, f)
		if err := e.ge.EmitSync(productKey(f.Product.ID), s); err != nil {
			return opErr(err, op)
		}
	}

	log.Info("findings emitted", "runID", r.RunID, "nFindings", len(r.Findings))
	return nil
}

func (e FindingsEmitter) Close() {
	const op = "FindingsEmitter.Close"
	log := slog.With("op", op)

	log.Info("closing emitter...")
	if err := e.ge.Finish(); err != nil {
		log.Error("failed to finish gracefully", "err", err)
		return
	}
	log.Info("emitter is closed")
}
