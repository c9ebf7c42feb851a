package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/tester"
	"github.com/niksmo/catalog-imgcheck/internal/adapter/kafka"
	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockProducerClient struct {
	mock.Mock
}

func (c *MockProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	args := c.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (c *MockProducerClient) Close() {
	c.Called()
}

// jsonSerde stands in for the registry serde.
type jsonSerde struct{}

func (jsonSerde) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonSerde) Decode(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

type failingEncoder struct{}

func (failingEncoder) Encode(any) ([]byte, error) {
	return nil, errors.New("encode failed")
}

func testReport() domain.Report {
	url := "https://www.velykapet.com/a.jpg"
	return domain.Report{
		RunID:     "run-1",
		StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		BaseURL:   "http://localhost:5135",
		KnownHost: "velykapet.com",
		Findings: []domain.Finding{
			{
				Product:        domain.Product{ID: 1, Name: "A", ImageURL: &url, Images: []string{url}},
				Classification: domain.Populated, ImageCount: 1, KnownStorage: true, Consistent: true,
				Probe: &domain.ImageProbe{URL: url, Accessible: true, StatusCode: 200},
			},
			{
				Product:        domain.Product{ID: 2, Name: "B"},
				Classification: domain.MissingField,
			},
		},
		Summary: domain.Summary{Total: 2, Populated: 1, Missing: 1, MissingField: 1, KnownStorage: 1},
		Target: &domain.TargetCheck{
			ProductID: 1,
			Fetched:   true,
			Finding:   domain.Finding{KnownStorage: true},
		},
	}
}

func TestReportProducer(t *testing.T) {
	t.Run("Produce", func(t *testing.T) {
		cl := new(MockProducerClient)
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{}})

		p, err := kafka.NewReportProducer(
			kafka.ProducerWithClientOpt(cl),
			kafka.ProducerEncoderOpt(jsonSerde{}),
		)
		require.NoError(t, err)

		err = p.SinkReport(t.Context(), testReport())
		require.NoError(t, err)

		cl.AssertNumberOfCalls(t, "ProduceSync", 1)
		rs := cl.Calls[0].Arguments.Get(1).([]*kgo.Record)
		require.Len(t, rs, 1)
		assert.Equal(t, "run-1", string(rs[0].Key))

		var v schema.ReportV1
		require.NoError(t, json.Unmarshal(rs[0].Value, &v))
		assert.Equal(t, 2, v.Summary.Total)
		assert.Equal(t, 1, v.TargetProductID)
		assert.True(t, v.TargetFetched)
		assert.True(t, v.TargetKnownStorage)
	})

	t.Run("ProduceFailed", func(t *testing.T) {
		cl := new(MockProducerClient)
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{Err: errors.New("broker down")}})

		p, err := kafka.NewReportProducer(
			kafka.ProducerWithClientOpt(cl),
			kafka.ProducerEncoderOpt(jsonSerde{}),
		)
		require.NoError(t, err)

		err = p.SinkReport(t.Context(), testReport())
		require.Error(t, err)
	})

	t.Run("EncodeFailed", func(t *testing.T) {
		cl := new(MockProducerClient)
		p, err := kafka.NewReportProducer(
			kafka.ProducerWithClientOpt(cl),
			kafka.ProducerEncoderOpt(failingEncoder{}),
		)
		require.NoError(t, err)

		err = p.SinkReport(t.Context(), testReport())
		require.Error(t, err)
		cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		cl := new(MockProducerClient)
		p, err := kafka.NewReportProducer(
			kafka.ProducerWithClientOpt(cl),
			kafka.ProducerEncoderOpt(jsonSerde{}),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err = p.SinkReport(ctx, testReport())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NilEncoder", func(t *testing.T) {
		_, err := kafka.NewReportProducer(
			kafka.ProducerWithClientOpt(new(MockProducerClient)),
			kafka.ProducerEncoderOpt(nil),
		)
		require.Error(t, err)
	})

	t.Run("TooFewOpts", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = kafka.NewReportProducer(kafka.ProducerEncoderOpt(jsonSerde{}))
		})
	})

	t.Run("Close", func(t *testing.T) {
		cl := new(MockProducerClient)
		cl.On("Close").Return()
		p, err := kafka.NewReportProducer(
			kafka.ProducerWithClientOpt(cl),
			kafka.ProducerEncoderOpt(jsonSerde{}),
		)
		require.NoError(t, err)
		p.Close()
		cl.AssertCalled(t, "Close")
	})
}

func TestFindingsEmitter(t *testing.T) {
	const topic = "findings"
	gkt := tester.New(t)

	e, err := kafka.NewFindingsEmitter(
		nil, topic, jsonSerde{}, goka.WithEmitterTester(gkt),
	)
	require.NoError(t, err)
	defer e.Close()

	qt := gkt.NewQueueTracker(topic)

	err = e.SinkReport(t.Context(), testReport())
	require.NoError(t, err)

	key, value, ok := qt.Next()
	require.True(t, ok)
	assert.Equal(t, "1", key)
	first, ok := value.(schema.FindingV1)
	require.True(t, ok)
	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, "Populated", first.Classification)
	require.NotNil(t, first.ProbeStatus)
	assert.Equal(t, 200, *first.ProbeStatus)

	key, value, ok = qt.Next()
	require.True(t, ok)
	assert.Equal(t, "2", key)
	second := value.(schema.FindingV1)
	assert.Equal(t, "MissingField", second.Classification)
	assert.Nil(t, second.ImageURL)
	assert.NotNil(t, second.Images)
	assert.Nil(t, second.ProbeStatus)

	_, _, ok = qt.Next()
	assert.False(t, ok)
}

func TestFindingsEmitterNilSerde(t *testing.T) {
	_, err := kafka.NewFindingsEmitter(nil, "findings", nil)
	require.Error(t, err)
}
