// Package main starts the party coordination service and handles termination.
//
// The process owns boarding-group membership and the elevator dispatch
// handshake; seating physics and participant sessions live with the game
// transport layer and are reached over NATS.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	partycmd "github.com/quillback/liftline/internal/cmd/party"
)

func main() {
	cfg, err := partycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PARTY] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := partycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
