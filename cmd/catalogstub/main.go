package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/catalog-imgcheck/internal/adapter/httphandler"
	"github.com/niksmo/catalog-imgcheck/pkg/sigctx"
	"github.com/spf13/pflag"
)

const closeTimeout = 5 * time.Second

func main() {
	addr := pflag.StringP("addr", "a", ":5135", "listen address")
	fixture := pflag.StringP("fixture", "f", "", "products JSON file, built-in sample if empty")
	pflag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	catalog := loadCatalog(*fixture)

	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	server := httphandler.NewHTTPServer(*addr, httphandler.NewCatalogHandler(catalog))
	go server.Run(stop)

	slog.Info("catalog stub is running", "nProducts", catalog.Len())

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	server.Close(ctx)
}

func loadCatalog(path string) httphandler.Catalog {
	if path == "" {
		return httphandler.DefaultCatalog()
	}

	f, err := os.Open(path)
	if err != nil {
		fallDown(err)
	}
	defer f.Close()

	catalog, err := httphandler.LoadCatalog(f)
	if err != nil {
		fallDown(err)
	}
	return catalog
}

func fallDown(err error) {
	slog.Error("failed to load fixture", "err", err)
	os.Exit(2)
}
