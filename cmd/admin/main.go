package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spec-kit/coworking/internal/bootstrap"
	"github.com/spec-kit/coworking/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunDomain(ctx, domain.LabelAdmin); err != nil {
		log.Fatalf("admin service: %v", err)
	}
}
