package main

import (
	"flag"
	"fmt"
	"os"

	"widt/internal/di"
	"widt/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging")
	flag.StringVar(&flags.DebugChat, "debug-chat", "", "chat id limiting sweeps to a single test chat")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "widt: %v\n", err)
		os.Exit(1)
	}
}
