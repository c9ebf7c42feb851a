package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrTooFewOpts = errors.New("too few options")

// A Serde encodes values in the registry wire format: a magic byte,
// the schema id and the Avro payload.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

// NewSerdeReportV1 registers [ReportSchemaTextV1] under the subject and
// returns the serde for [ReportV1].
//
// Both [SubjectOpt] and [SchemaIdentifierOpt] are required.
func NewSerdeReportV1(ctx context.Context, opts ...Opt) (Serde, error) {
	return newSerde[ReportV1](ctx, "NewSerdeReportV1", ReportSchemaTextV1, opts)
}

// NewSerdeFindingV1 is [NewSerdeReportV1] for [FindingV1].
func NewSerdeFindingV1(ctx context.Context, opts ...Opt) (Serde, error) {
	return newSerde[FindingV1](ctx, "NewSerdeFindingV1", FindingSchemaTextV1, opts)
}

func newSerde[T any](
	ctx context.Context, op string, schemaText string, opts []Opt,
) (Serde, error) {
	if len(opts) != 2 {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	var so serdeOpts
	for _, o := range opts {
		if err := o(&so); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := so.si.DetermineID(ctx, so.subject, schemaText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var zero T
	s := new(sr.Serde)
	s.Register(
		id,
		zero,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return s, nil
}
