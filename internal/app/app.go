package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lovoo/goka"
	"github.com/niksmo/catalog-imgcheck/config"
	"github.com/niksmo/catalog-imgcheck/internal/adapter"
	"github.com/niksmo/catalog-imgcheck/internal/adapter/console"
	"github.com/niksmo/catalog-imgcheck/internal/adapter/export"
	"github.com/niksmo/catalog-imgcheck/internal/adapter/kafka"
	"github.com/niksmo/catalog-imgcheck/internal/adapter/productapi"
	"github.com/niksmo/catalog-imgcheck/internal/adapter/storage"
	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
	"github.com/niksmo/catalog-imgcheck/internal/core/service"
	"github.com/niksmo/catalog-imgcheck/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	report  schema.Serde
	finding schema.Serde
}

type sink struct {
	name string
	port.ReportSink
}

type App struct {
	ctx       context.Context
	cfg       config.Config
	out       io.Writer
	tlsCfg    *tls.Config
	serdes    serdes
	validator port.Validator
	printer   port.ReportPrinter
	sinks     []sink
	closers   []func()
}

// New wires one validation run. Human output goes to out.
func New(ctx context.Context, cfg config.Config, out io.Writer) *App {
	app := &App{ctx: ctx, cfg: cfg, out: out}

	app.initLogger()
	app.initCoreService()
	app.initPrinter()
	app.initFileSinks()
	app.initStorage()
	app.initBroker()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	client, err := productapi.NewClient(
		productapi.BaseURLOpt(app.cfg.BaseURL),
		productapi.TimeoutOpt(app.cfg.Timeout),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	s, err := service.New(
		service.Config{
			BaseURL:   client.BaseURL(),
			KnownHost: app.cfg.KnownHost,
			TargetID:  app.cfg.ProductID,
			Probe:     app.cfg.ProbeImages,
			Strict:    app.cfg.Strict,
		},
		client,
		client,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.validator = s
}

func (app *App) initPrinter() {
	app.printer = console.NewPrinter(app.out)
}

func (app *App) initFileSinks() {
	if path := app.cfg.Export.JSON; path != "" {
		app.addSink("json", export.NewJSONReportWriter(path))
	}
	if path := app.cfg.Export.URLs; path != "" {
		app.addSink("urls", export.NewURLListWriter(path))
	}
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	if app.cfg.SQLDB == "" {
		return
	}

	db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.skipSink(op, "postgres", err)
		return
	}
	app.closers = append(app.closers, db.Close)
	app.addSink("postgres", storage.NewRunsRepository(db))
}

func (app *App) initBroker() {
	const op = "App.initBroker"

	if !app.cfg.Broker.Enabled() {
		return
	}

	if t := app.cfg.Broker.TLS; t.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
		if err != nil {
			app.skipSink(op, "kafka", err)
			return
		}
		app.tlsCfg = tlsCfg
	}

	if err := app.initSerdes(); err != nil {
		app.skipSink(op, "kafka", err)
		return
	}

	app.initReportProducer()
	app.initFindingsEmitter()
}

func (app *App) initSerdes() error {
	const op = "App.initSerdes"

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.tlsCfg != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsCfg))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)
	topics := app.cfg.Broker.Topics

	reportSerde, err := schema.NewSerdeReportV1(
		app.ctx,
		schema.SubjectOpt(topics.Reports+"-value"),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	findingSerde, err := schema.NewSerdeFindingV1(
		app.ctx,
		schema.SubjectOpt(topics.Findings+"-value"),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	app.serdes.report = reportSerde
	app.serdes.finding = findingSerde
	return nil
}

func (app *App) initReportProducer() {
	const op = "App.initReportProducer"

	p, err := kafka.NewReportProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.Reports,
			app.tlsCfg,
		),
		kafka.ProducerEncoderOpt(app.serdes.report),
	)
	if err != nil {
		app.skipSink(op, "kafka-reports", err)
		return
	}
	app.closers = append(app.closers, p.Close)
	app.addSink("kafka-reports", p)
}

func (app *App) initFindingsEmitter() {
	const op = "App.initFindingsEmitter"

	var opts []goka.EmitterOption
	if app.tlsCfg != nil {
		saramaCfg := goka.DefaultConfig()
		saramaCfg.Net.TLS.Enable = true
		saramaCfg.Net.TLS.Config = app.tlsCfg
		opts = append(opts,
			goka.WithEmitterProducerBuilder(
				goka.ProducerBuilderWithConfig(saramaCfg),
			),
			goka.WithEmitterTopicManagerBuilder(
				goka.TopicManagerBuilderWithConfig(
					saramaCfg, goka.NewTopicManagerConfig(),
				),
			),
		)
	}

	e, err := kafka.NewFindingsEmitter(
		app.cfg.Broker.SeedBrokers,
		app.cfg.Broker.Topics.Findings,
		app.serdes.finding,
		opts...,
	)
	if err != nil {
		app.skipSink(op, "kafka-findings", err)
		return
	}
	app.closers = append(app.closers, e.Close)
	app.addSink("kafka-findings", e)
}

func (app *App) addSink(name string, s port.ReportSink) {
	app.sinks = append(app.sinks, sink{name, s})
}

func (app *App) skipSink(op, name string, err error) {
	slog.Error("sink is disabled", "op", op, "sink", name, "err", err)
}

// Run validates the catalog once, prints the report, hands it to every
// configured sink and returns the process exit code.
func (app *App) Run() int {
	r := app.validator.Validate(app.ctx)
	app.printer.PrintReport(r)
	app.sinkReport(r)
	return r.ExitCode()
}

func (app *App) sinkReport(r domain.Report) {
	const op = "App.sinkReport"
	log := slog.With("op", op)

	for _, s := range app.sinks {
		if err := s.SinkReport(app.ctx, r); err != nil {
			log.Error("failed to sink report", "sink", s.name, "err", err)
		}
	}
}

func (app *App) Close() {
	slog.Info("application is closing...")

	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
