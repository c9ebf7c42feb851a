package schema

import (
	"context"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// A SchemaIdentifier resolves the registry id of a schema under a subject.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, avroSchemaText string) (int, error)
}

type schemaRegistry interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
}

type schemaCreater struct {
	cl schemaRegistry
}

// NewSchemaCreater returns a [SchemaIdentifier] that registers the schema
// if the subject does not hold it yet.
func NewSchemaCreater(cl schemaRegistry) SchemaIdentifier {
	return schemaCreater{cl}
}

func (c schemaCreater) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "schemaCreater.DetermineID"

	ss, err := c.cl.CreateSchema(ctx, subject, sr.Schema{
		Type:   sr.TypeAvro,
		Schema: avroSchemaText,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
