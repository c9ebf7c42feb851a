package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
	"github.com/niksmo/catalog-imgcheck/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const knownHost = "velykapet.com"

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockFetcher) FetchProduct(ctx context.Context, id int) (domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(domain.Product)
	return p, args.Error(1)
}

type MockProber struct {
	mock.Mock
}

func (m *MockProber) ProbeImage(ctx context.Context, url string) domain.ImageProbe {
	args := m.Called(ctx, url)
	return args.Get(0).(domain.ImageProbe)
}

func strPtr(s string) *string { return &s }

func r2Product(id int, name string) domain.Product {
	url := fmt.Sprintf("https://www.velykapet.com/%d.jpg", id)
	return domain.Product{
		ID: id, Name: name, ImageURL: strPtr(url), Images: []string{url},
	}
}

func newService(
	t *testing.T, cfg service.Config, f *MockFetcher, p *MockProber,
) service.Service {
	t.Helper()
	if cfg.KnownHost == "" {
		cfg.KnownHost = knownHost
	}
	if cfg.TargetID == 0 {
		cfg.TargetID = 2
	}
	var prober port.ImageProber
	if p != nil {
		prober = p
	}
	s, err := service.New(cfg, f, prober)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("NilFetcher", func(t *testing.T) {
		_, err := service.New(service.Config{}, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrNilFetcher)
	})

	t.Run("ProbeWithoutProber", func(t *testing.T) {
		_, err := service.New(service.Config{Probe: true}, new(MockFetcher), nil)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("EmptyImages", func(t *testing.T) {
		f := new(MockFetcher)
		products := []domain.Product{{Name: "A", Images: []string{}}}
		f.On("FetchProducts", mock.Anything).Return(products, nil)
		f.On("FetchProduct", mock.Anything, 2).Return(r2Product(2, "B"), nil)

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		require.Len(t, r.Findings, 1)
		assert.Equal(t, domain.EmptyField, r.Findings[0].Classification)
		assert.False(t, r.OK)
		assert.Equal(t, 1, r.ExitCode())
		assert.Equal(t, domain.NoFailure, r.Failure)
		assert.NotEmpty(t, r.RunID)
		assert.False(t, r.FinishedAt.Before(r.StartedAt))
		f.AssertExpectations(t)
	})

	t.Run("KnownStorage", func(t *testing.T) {
		f := new(MockFetcher)
		url := "https://www.velykapet.com/x.jpg"
		products := []domain.Product{
			{Name: "B", ImageURL: strPtr(url), Images: []string{url}},
		}
		f.On("FetchProducts", mock.Anything).Return(products, nil)
		f.On("FetchProduct", mock.Anything, 2).Return(products[0], nil)

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		require.Len(t, r.Findings, 1)
		assert.Equal(t, domain.Populated, r.Findings[0].Classification)
		assert.True(t, r.Findings[0].KnownStorage)
		assert.True(t, r.OK)
		assert.Equal(t, 0, r.ExitCode())
		require.NotNil(t, r.Target)
		assert.True(t, r.Target.Fetched)
		assert.True(t, r.Target.Finding.KnownStorage)
	})

	t.Run("ConnectionFailure", func(t *testing.T) {
		f := new(MockFetcher)
		err := fmt.Errorf("Client.FetchProducts: %w", domain.ErrConnectionFailure)
		f.On("FetchProducts", mock.Anything).Return(nil, err)

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		assert.Equal(t, domain.ConnectionFailure, r.Failure)
		assert.False(t, r.OK)
		assert.Equal(t, 1, r.ExitCode())
		assert.Nil(t, r.Target)
		f.AssertNotCalled(t, "FetchProduct", mock.Anything, mock.Anything)
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProducts", mock.Anything).
			Return(nil, &domain.StatusError{Code: 500})

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		assert.Equal(t, domain.UnexpectedStatus, r.Failure)
		assert.Contains(t, r.FailureMsg, "500")
		assert.False(t, r.OK)
	})

	t.Run("UnhandledError", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProducts", mock.Anything).
			Return(nil, errors.New("invalid character"))

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		assert.Equal(t, domain.UnhandledError, r.Failure)
		assert.False(t, r.OK)
	})

	t.Run("TargetNotFoundKeepsResult", func(t *testing.T) {
		f := new(MockFetcher)
		products := []domain.Product{r2Product(1, "A")}
		f.On("FetchProducts", mock.Anything).Return(products, nil)
		f.On("FetchProduct", mock.Anything, 2).
			Return(domain.Product{}, &domain.StatusError{Code: 404})

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		assert.True(t, r.OK)
		require.NotNil(t, r.Target)
		assert.False(t, r.Target.Fetched)
		assert.Contains(t, r.Target.Failure, "404")
	})

	t.Run("TargetConnectionFailure", func(t *testing.T) {
		f := new(MockFetcher)
		products := []domain.Product{r2Product(1, "A")}
		f.On("FetchProducts", mock.Anything).Return(products, nil)
		f.On("FetchProduct", mock.Anything, 2).
			Return(domain.Product{}, domain.ErrConnectionFailure)

		r := newService(t, service.Config{}, f, nil).Validate(t.Context())

		assert.False(t, r.OK)
		assert.Equal(t, domain.ConnectionFailure, r.Failure)
		assert.Equal(t, 1, r.Summary.Total)
	})

	t.Run("StrictInconsistent", func(t *testing.T) {
		f := new(MockFetcher)
		products := []domain.Product{
			{Name: "A", ImageURL: strPtr("https://a/1.jpg"), Images: []string{"https://b/2.jpg"}},
		}
		f.On("FetchProducts", mock.Anything).Return(products, nil)
		f.On("FetchProduct", mock.Anything, 2).Return(products[0], nil)

		lax := newService(t, service.Config{}, f, nil).Validate(t.Context())
		assert.True(t, lax.OK)
		assert.Equal(t, 1, lax.Summary.Inconsistent)

		strict := newService(t, service.Config{Strict: true}, f, nil).Validate(t.Context())
		assert.False(t, strict.OK)
	})

	t.Run("Probe", func(t *testing.T) {
		f := new(MockFetcher)
		p := new(MockProber)
		ok := r2Product(1, "A")
		gone := r2Product(3, "C")
		products := []domain.Product{ok, {Name: "B", Images: []string{}}, gone}
		f.On("FetchProducts", mock.Anything).Return(products, nil)
		f.On("FetchProduct", mock.Anything, 2).Return(r2Product(2, "B"), nil)
		p.On("ProbeImage", mock.Anything, ok.Images[0]).Return(domain.ImageProbe{
			URL: ok.Images[0], Accessible: true, StatusCode: 200, ContentLength: 2048,
		})
		p.On("ProbeImage", mock.Anything, gone.Images[0]).Return(domain.ImageProbe{
			URL: gone.Images[0], StatusCode: 404,
		})

		s := newService(t, service.Config{Probe: true, Strict: true}, f, p)
		r := s.Validate(t.Context())

		p.AssertNumberOfCalls(t, "ProbeImage", 2)
		assert.Equal(t, 2, r.Summary.Probed)
		assert.Equal(t, 1, r.Summary.Accessible)
		assert.Equal(t, 1, r.Summary.Inaccessible)
		assert.Equal(t, int64(2048), r.Summary.ProbedBytes)
		assert.Nil(t, r.Findings[1].Probe)
		assert.False(t, r.OK)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		f := new(MockFetcher)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		r := newService(t, service.Config{}, f, nil).Validate(ctx)

		assert.False(t, r.OK)
		assert.Equal(t, domain.UnhandledError, r.Failure)
		f.AssertNotCalled(t, "FetchProducts", mock.Anything)
	})
}
