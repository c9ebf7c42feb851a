package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt dials the seed brokers and pings them. tlsCfg may be nil.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, tlsCfg *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}
		if tlsCfg != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsCfg))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerWithClientOpt uses an already built client.
func ProducerWithClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productKey(id int) string {
	return strconv.Itoa(id)
}

func reportToSchemaV1(r domain.Report) (s schema.ReportV1) {
	s.RunID = r.RunID
	s.StartedAt = r.StartedAt
	s.FinishedAt = r.FinishedAt
	s.BaseURL = r.BaseURL
	s.KnownHost = r.KnownHost
	s.Strict = r.Strict
	s.OK = r.OK
	s.Failure = string(r.Failure)
	s.FailureMessage = r.FailureMsg
	s.FailureStatus = r.FailureStatus
	s.Summary = schema.SummaryV1(r.Summary)

	if r.Target != nil {
		s.TargetProductID = r.Target.ProductID
		s.TargetFetched = r.Target.Fetched
		s.TargetKnownStorage = r.Target.Fetched && r.Target.Finding.KnownStorage
		s.TargetFailure = r.Target.Failure
	}
	return
}

func findingToSchemaV1(runID string, f domain.Finding) (s schema.FindingV1) {
	s.RunID = runID
	s.ProductID = f.Product.ID
	s.Name = f.Product.Name
	s.ImageURL = f.Product.ImageURL
	s.Images = f.Product.Images
	if s.Images == nil {
		s.Images = []string{}
	}
	s.Classification = string(f.Classification)
	s.KnownStorage = f.KnownStorage
	s.Consistent = f.Consistent

	if f.Probe != nil {
		status := f.Probe.StatusCode
		accessible := f.Probe.Accessible
		s.ProbeStatus = &status
		s.ProbeAccessible = &accessible
	}
	return
}
