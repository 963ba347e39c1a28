/*
Package main
File: main.go
Description: Server entry point. Loads the resource catalog, restores
assignees and inventory from SQLite, starts the WebSocket hub, and runs the
alert pulse that pushes better spawns to connected clients.
*/

package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/api"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/game"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/store"
)

var (
	InfoLog  *log.Logger
	ErrorLog *log.Logger
)

func setupLogging(logDir string) {
	InfoLog = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	if logDir == "" {
		return
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		ErrorLog.Printf("Log dir %s: %v", logDir, err)
		return
	}
	fInfo, err := os.OpenFile(filepath.Join(logDir, "server.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		ErrorLog.Printf("Log file: %v", err)
		return
	}
	fErr, err := os.OpenFile(filepath.Join(logDir, "error.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		ErrorLog.Printf("Log file: %v", err)
		return
	}
	InfoLog.SetOutput(io.MultiWriter(os.Stdout, fInfo))
	ErrorLog.SetOutput(io.MultiWriter(os.Stderr, fErr))
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	logDir := flag.String("logs", "logs", "directory for server.log and error.log; empty logs to the console only")
	flag.Parse()

	setupLogging(*logDir)

	// 1. Load configuration
	cfg, err := game.LoadConfig(*configPath)
	if err != nil {
		ErrorLog.Fatalf("Config Fail: %v", err)
	}

	// 2. Persistence
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		ErrorLog.Fatalf("Store Fail: %v", err)
	}
	defer st.Close()

	// 3. Catalog, registry and engine
	session, err := game.NewSession(cfg, st, InfoLog, ErrorLog)
	if err != nil {
		ErrorLog.Fatalf("Catalog Fail: %v", err)
	}
	if !session.Complete() {
		ErrorLog.Printf("Catalog loaded with %d skipped entries; alerts answer 503 until fixed", len(session.Catalog().Problems))
	}

	// 4. Real-time hub
	hub := api.NewHub(InfoLog)
	go hub.Run()

	// 5. THE ALERT PULSE
	go func() {
		ticker := time.NewTicker(cfg.PulseInterval())
		defer ticker.Stop()
		for range ticker.C {
			if !session.Complete() {
				continue
			}
			report, changed, err := session.Pulse()
			if err != nil {
				ErrorLog.Printf("PULSE: %v", err)
				continue
			}
			if !changed {
				continue
			}
			if err := hub.Publish(api.MsgResourceAlert, report); err != nil {
				ErrorLog.Printf("PULSE: publish: %v", err)
			}
		}
	}()

	// 6. Hot reload: SIGHUP re-reads config and catalog without a restart
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for range sigChan {
			InfoLog.Println("SIGNAL: Reloading catalog...")
			next, err := game.LoadConfig(*configPath)
			if err != nil {
				ErrorLog.Printf("Reload config: %v", err)
				continue
			}
			if err := session.Reload(next); err != nil {
				ErrorLog.Printf("Reload: %v", err)
			}
		}
	}()

	// 7. Router and server
	limiter := api.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	server := api.NewServer(session, hub, limiter, ErrorLog)

	InfoLog.Printf("RESOURCE ALERTS live on %s (galaxy %q)", cfg.Listen, session.Galaxy())
	if err := http.ListenAndServe(cfg.Listen, server.Routes()); err != nil {
		ErrorLog.Fatal(err)
	}
}
