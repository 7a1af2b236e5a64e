package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/adminapi"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/auth"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
)

var (
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, seed the bootstrap admin, then exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "init application:", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		err = application.ResetDB()
	} else {
		err = run(application)
	}
	if err != nil {
		zap.S().Errorf("storefront stopped: %v", err)
		application.Release()
		os.Exit(1)
	}
}

func run(application *app.Application) error {
	cfg := application.Config()
	uploadDir := cfg.GetUploadDir()
	blobs, err := blobstore.NewFileStore(uploadDir)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(auth.NewGormAdminRepository(application.DB()), cfg)
	catalogSvc := catalog.NewService(catalog.NewGormProductRepository(application.DB()), blobs)

	server, err := webserver.NewAdminServer(cfg, authSvc, uploadDir)
	if err != nil {
		return err
	}
	adminapi.New(cfg, catalogSvc, authSvc).Init(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
