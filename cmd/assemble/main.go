package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	assemblecmd "github.com/mistvale/loreweave/internal/cmd/assemble"
)

// main runs one prompt assembly and prints it.
func main() {
	cfg, err := assemblecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ASSEMBLE] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := assemblecmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("failed to assemble: %v", err)
	}
}
