// Command pushagent manages a device's push token against the notification API.
//
//	pushagent login <username> <password>
//	pushagent logout
//	pushagent token <value>     handle a token issued by the platform
//	pushagent reconcile         move a cached token to the profile
//	pushagent status
//	pushagent watch             reconcile on AGENT_RECONCILE_SCHEDULE until interrupted
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/event-notify/internal/application/pushtoken"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/infrastructure/apiclient"
	"github.com/event-notify/internal/infrastructure/localstore"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadAgent()

	flag.StringVar(&cfg.APIURL, "api", cfg.APIURL, "notification API base URL")
	flag.StringVar(&cfg.StorePath, "store", cfg.StorePath, "local store file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	store, err := localstore.Open(cfg.StorePath)
	if err != nil {
		slog.Error("cannot open local store", "path", cfg.StorePath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	client := apiclient.New(cfg.APIURL, store)
	manager := pushtoken.NewManager(client, client, store)

	if err := run(context.Background(), cfg, flag.Args(), client, manager, store); err != nil {
		slog.Error(flag.Arg(0)+" failed", "err", err)
		store.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AgentConfig, args []string, client *apiclient.Client, manager *pushtoken.Manager, store *localstore.Store) error {
	switch args[0] {
	case "login":
		if len(args) != 3 {
			return fmt.Errorf("usage: login <username> <password>")
		}
		userID, err := client.Login(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		slog.Info("logged in", "user_id", userID)
		return reconcile(ctx, manager)

	case "logout":
		return client.Logout(ctx)

	case "token":
		if len(args) != 2 || args[1] == "" {
			return fmt.Errorf("usage: token <value>")
		}
		return manager.OnTokenIssued(ctx, args[1])

	case "reconcile":
		return reconcile(ctx, manager)

	case "status":
		userID, ok := client.CurrentUserID(ctx)
		cached, pending, err := store.Get(ctx, pushtoken.CacheKey)
		if err != nil {
			return err
		}
		fmt.Printf("session: %v user_id=%s\n", ok, userID)
		fmt.Printf("pending token: %v %s\n", pending, cached)
		return nil

	case "watch":
		return watch(ctx, cfg.ReconcileSchedule, manager)
	}
	usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func reconcile(ctx context.Context, manager *pushtoken.Manager) error {
	wrote, err := manager.ReconcileOnSessionStart(ctx)
	if err != nil {
		return err
	}
	if wrote {
		slog.Info("cached push token reconciled")
	} else {
		slog.Debug("nothing to reconcile")
	}
	return nil
}

// watch retries reconciliation on a schedule so a token cached during an
// outage reaches the profile once the API is reachable again.
func watch(ctx context.Context, schedule string, manager *pushtoken.Manager) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := reconcile(ctx, manager); err != nil {
			slog.Warn("scheduled reconcile failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	c.Start()
	slog.Info("watching", "schedule", schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	return nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: pushagent [flags] login|logout|token|reconcile|status|watch [args]\n")
	flag.PrintDefaults()
}
