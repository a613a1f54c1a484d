package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/agent"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/config"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/ipc"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/metrics"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/rules"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/store"
)

const banner = `
 ___           _  _ _         __  __ _         _
| _ ) ___ ___ | || (_)_ _____|  \/  (_)_ _  __| |
| _ \/ -_) -_)| __ | \ V / -_) |\/| | | ' \/ _' |
|___/\___\___||_||_|_|\_/\___|_|  |_|_|_||_\__,_|

Tick Arbitration Core`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	socketPath := flag.String("socket", "", "unix socket to listen on (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *socketPath != "" {
		cfg.Socket = *socketPath
	}

	slog.SetDefault(slog.New(cfg.Log.Handler(os.Stdout)))

	fmt.Println(banner)

	if err := run(cfg); err != nil {
		slog.Error("beehive stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	slog.Info("starting beehive", "store", cfg.Store.Backend, "socket", cfg.Socket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	compiled, err := rules.CompileDoctrine(cfg.Posture)
	if err != nil {
		return fmt.Errorf("compile posture rules: %w", err)
	}
	engine, err := rules.NewEngine(compiled)
	if err != nil {
		return fmt.Errorf("build posture engine: %w", err)
	}
	slog.Info("posture rules loaded", "rules", engine.Names())

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var recorder agent.Recorder
	if cfg.Metrics.Enabled {
		provider := metrics.NewProvider(cfg.Metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics shutdown failed", "error", err)
			}
		}()
		r, err := provider.Recorder()
		if err != nil {
			return fmt.Errorf("metrics recorder: %w", err)
		}
		recorder = r
		go provider.LogEvery(ctx)
	}

	opts := agent.Options{
		Movement: cfg.Movement,
		Intel:    cfg.Intel,
		Squad:    cfg.Squad,
		Engine:   engine,
		Store:    st,
		Recorder: recorder,
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.Socket); err != nil {
		return fmt.Errorf("clean up socket %s: %w", cfg.Socket, err)
	}
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Socket, err)
	}
	defer os.Remove(cfg.Socket)

	slog.Info("listening on domain socket", "path", cfg.Socket)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				slog.Info("shutting down")
				return nil
			default:
				slog.Error("failed to accept connection", "error", err)
				continue
			}
		}
		slog.Info("new connection accepted")
		go handleConn(ctx, conn, opts)
	}
}

// handleConn serves one host. Sessions share the store, so a reconnecting
// host picks up its squads and intel where it left off.
func handleConn(ctx context.Context, conn net.Conn, opts agent.Options) {
	c := ipc.NewConnection(conn, nil)
	a := agent.New(ctx, c, opts)
	a.Register(c)
	if err := c.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("session failed", "session", a.Session(), "error", err)
	}
	slog.Info("session ended", "session", a.Session())
}
