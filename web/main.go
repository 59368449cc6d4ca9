package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	workers := flag.Int("workers", 0, "Render workers per request (0 = all CPUs)")
	verbose := flag.Bool("v", false, "Log per-frame statistics")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Create and start web server
	webServer := server.NewServer(*port, *workers)

	fmt.Println("Software Rasterizer Web Server")
	fmt.Printf("Visit http://localhost:%d to start rendering\n", *port)

	if err := webServer.Start(); err != nil {
		core.Logger().Error("server stopped", "error", err)
		os.Exit(1)
	}
}
