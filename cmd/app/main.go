package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confdesk/review-engine/internal/app"
	"github.com/confdesk/review-engine/internal/config"
)

func main() {
	cfg := config.MustLoad()

	application := app.NewApp(cfg)

	go func() {
		application.Server.Run()
	}()

	application.Log.Info("application started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	application.Server.Stop(ctx)
}
