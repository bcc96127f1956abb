package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/config"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/kart"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/metrics"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/transport"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/watch"
)

// #region main
func main() {
	configPath := flag.String("config", "fuzzy_kart.yaml", "path to the controller config")
	noStdin := flag.Bool("no-stdin", false, "serve gRPC only; do not read ticks from stdin")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, !*noStdin); err != nil {
		log.Fatal("controller", zap.Error(err))
	}
}

// #endregion main

// #region run
func run(ctx context.Context, cfg config.Config, log *zap.Logger, readStdin bool) error {
	st, err := store.NewStore(cfg.Controller.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	sys := pipeline.NewSystem(log.Named("pipeline"))
	orch, err := orchestrator.New(st, sys, orchestrator.Options{
		Eval:           cfg.Eval,
		Gate:           cfg.Gate,
		Method:         cfg.Controller.Method,
		LogEvaluations: cfg.Controller.LogEvaluations,
	}, log.Named("orchestrator"))
	if err != nil {
		return err
	}

	rec, err := orch.Bootstrap(cfg.Controller.RuleBase)
	if err != nil {
		return err
	}
	log.Info("controller ready",
		zap.String("db", cfg.Controller.DBPath),
		zap.String("version", rec.VersionID),
		zap.String("rule_base", rec.Name),
	)

	if cfg.Server.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("metrics listening", zap.String("addr", cfg.Server.MetricsAddr))
	}

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
		}
		db := st.DB()
		if !cfg.Controller.LogEvaluations {
			db = nil
		}
		gs := grpc.NewServer()
		transport.Register(gs, transport.NewServer(sys, log.Named("grpc"), db))
		go func() {
			if err := gs.Serve(lis); err != nil {
				log.Error("grpc server", zap.Error(err))
			}
		}()
		defer gs.GracefulStop()
		log.Info("grpc listening", zap.String("addr", cfg.Server.GRPCAddr))
	}

	if cfg.Watch.Enabled && cfg.Controller.RuleBase != "" {
		w, err := watch.New(cfg.Controller.RuleBase, cfg.Watch.Debounce, orch.Reload, log.Named("watch"))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	if !readStdin {
		<-ctx.Done()
		return nil
	}
	return tickLoop(ctx, orch, cfg.Kart, log)
}

// #endregion run

// #region tick-loop

// tickLoop reads one JSON kart.Readings per line and writes one JSON
// kart.Command per line. Bad lines are logged and skipped.
func tickLoop(ctx context.Context, orch *orchestrator.Orchestrator, scales kart.Scales, log *zap.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	enc := json.NewEncoder(os.Stdout)
	tick := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "quit" || line == "exit" {
				return nil
			}
			tick++

			var r kart.Readings
			if err := json.Unmarshal([]byte(line), &r); err != nil {
				log.Warn("bad readings", zap.Int("tick", tick), zap.Error(err))
				continue
			}
			res, err := orch.Tick(logging.TriggerTick, scales.Input(r))
			if err != nil {
				log.Error("evaluate", zap.Int("tick", tick), zap.Error(err))
				continue
			}
			if err := enc.Encode(kart.FromOutput(res.Output)); err != nil {
				return fmt.Errorf("write command: %w", err)
			}
		}
	}
}

// #endregion tick-loop
