package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/zeromicro/go-zero/rest"

	"findash/internal/cli"
	"findash/internal/config"
	"findash/internal/handler"
	"findash/internal/svc"
)

var configFile = flag.String("f", "etc/findash.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	server := rest.MustNewServer(cfg.RestConf, rest.WithCors())
	defer server.Stop()

	ctx := svc.MustNewServiceContext(*cfg)
	defer ctx.Close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ctx.Start(runCtx); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
