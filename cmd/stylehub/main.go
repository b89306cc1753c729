package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stylehub/stylehub/config"
	"github.com/stylehub/stylehub/internal/adminapi"
	"github.com/stylehub/stylehub/internal/app"
	"github.com/stylehub/stylehub/internal/webserver"
	"go.uber.org/zap"
)

var (
	version  = "develop"
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate every table, then exit")
)

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("stylehub version: %s, Usage: stylehub -h\nOptions:", version)
		_, _ = fmt.Fprintln(os.Stderr, ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}
	printHelp()

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized, restart without -initdb to seed defaults")
		return
	}

	webserver.Init(application)
	adminapi.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := webserver.Listen(ctx); err != nil {
		zap.S().Errorf("web server exited: %s", err)
	}
}
