package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"lookout/internal/config"
	"lookout/internal/daemonrun"
)

func main() {
	configFlag := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Override logging.level for this run")
	flag.Parse()

	cfg, path, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts := daemonrun.Options{LogLevel: *logLevel}
	if err := daemonrun.Run(context.Background(), cfg, path, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
