package main

import (
	"os"

	"github.com/niksmo/catalog-imgcheck/config"
	"github.com/niksmo/catalog-imgcheck/internal/app"
	"github.com/niksmo/catalog-imgcheck/pkg/sigctx"
)

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()

	imgcheck := app.New(sigCtx, cfg, os.Stdout)
	defer imgcheck.Close()

	return imgcheck.Run()
}
