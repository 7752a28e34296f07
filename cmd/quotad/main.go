// quotad serves shared rolling-window quotas for hosted model providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/api"
	"github.com/Brandon7CC/MODELFORGE/internal/ledger"
	"github.com/Brandon7CC/MODELFORGE/internal/ledger/memory"
	"github.com/Brandon7CC/MODELFORGE/internal/ledger/tb"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

func main() {
	os.Exit(run())
}

// run executes quotad and returns an exit code.
func run() int {
	configPath := flag.String("config", "quotad.yaml", "path to quotad config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	defs, err := quota.LoadDefinitions(cfg.Limits.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "limits error: %v\n", err)
		return 1
	}

	var backend ledger.Backend
	var closeBackend func()
	switch cfg.Server.Backend {
	case "tigerbeetle":
		clusterID, err := parseClusterID(cfg.TigerBeetle.ClusterID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cluster id error: %v\n", err)
			return 1
		}
		tbBackend, err := tb.New(tb.Config{
			ClusterID: clusterID,
			Addresses: cfg.TigerBeetle.Addresses,
			Sessions:  cfg.TigerBeetle.Sessions,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "tb backend error: %v\n", err)
			return 1
		}
		backend = tbBackend
		closeBackend = func() {
			_ = tbBackend.Close()
		}
	default:
		backend = memory.New()
	}

	for _, def := range defs {
		if err := backend.ApplyDefinition(context.Background(), def); err != nil {
			fmt.Fprintf(os.Stderr, "apply limit %q: %v\n", def.Key, err)
			if closeBackend != nil {
				closeBackend()
			}
			return 1
		}
	}

	handler := api.NewHandler(api.Config{Backend: backend, Now: time.Now})
	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.Handle("/", handler)

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	if closeBackend != nil {
		closeBackend()
	}
	return 0
}
