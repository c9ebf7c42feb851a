package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/niksmo/catalog-imgcheck/config"
	"github.com/niksmo/catalog-imgcheck/internal/adapter"
	"github.com/niksmo/catalog-imgcheck/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	partitions        = 3
	replicationFactor = 3
	deletePolicy      = "delete"
	retentionMs       = "604800000" // 7 days
)

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		fmt.Println("broker.seed_brokers is empty, nothing to do")
		return 2
	}

	cl, err := createClient(cfg)
	if err != nil {
		printFail(err)
		return 2
	}
	defer cl.Close()

	topics := []string{
		cfg.Broker.Topics.Reports,
		cfg.Broker.Topics.Findings,
	}

	printStart(topics)
	defer printComplete(time.Now())

	if err := makeTopics(sigCtx, cl, deletePolicy, topics...); err != nil {
		printFail(err)
		return 1
	}
	return 0
}

func createClient(cfg config.Config) (*kadm.Client, error) {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}

	if t := cfg.Broker.TLS; t.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}

	return kadm.NewOptClient(opts...)
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, cleanupPolicy string, topics ...string,
) error {
	var (
		minISR    = "1"
		retention = retentionMs
	)

	topicConfig := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &minISR,
		"retention.ms":        &retention,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		topicConfig,
		topics...,
	)

	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		err := res.Err
		if err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printStart(topics []string) {
	fmt.Println("initializing topics...")
	for _, t := range topics {
		fmt.Printf("\t- %q\n", t)
	}
	fmt.Println()
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
