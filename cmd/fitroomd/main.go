// Command fitroomd runs the fitroom generation daemon.
package main

import (
	"context"
	"flag"
	"log"

	"fitroom/internal/config"
	"fitroom/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	diagnostic := flag.Bool("diagnostic", false, "enable diagnostic mode with a separate debug log")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts := daemonrun.Options{LogLevel: *logLevel, Diagnostic: *diagnostic}
	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		log.Fatalf("fitroomd: %v", err)
	}
}
