// Command godrive-smoke runs one full session against a live drive backend:
// rehydrate (or login), browse the home folder, optionally create and rename
// a scratch folder, fetch the profile, and print a metrics snapshot.
//
// The session is persisted to a state file, so a second run reuses the
// stored token and exercises the rehydrate + lazy-profile path instead of
// logging in again.
//
// Usage:
//
//	godrive-smoke -base-url https://drive.example.com \
//	  -login alice@example.com -password secret [-state-dir DIR] [-create]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	goDrive "github.com/ferndrop/goDrive"
	"github.com/ferndrop/goDrive/session"
)

func main() {
	var (
		baseURL  = flag.String("base-url", "", "drive backend base URL (required)")
		loginID  = flag.String("login", "", "login identifier; required unless a stored session exists")
		password = flag.String("password", "", "password; required unless a stored session exists")
		stateDir = flag.String("state-dir", "", "directory for the persisted session (default: user config dir)")
		create   = flag.Bool("create", false, "create and rename a scratch folder")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall run timeout")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *baseURL == "" {
		fmt.Fprintln(os.Stderr, "-base-url is required")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dir := *stateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve state dir: %v\n", err)
			os.Exit(1)
		}
		dir = filepath.Join(base, "godrive")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "create state dir: %v\n", err)
		os.Exit(1)
	}

	client, err := goDrive.New().
		WithBaseURL(*baseURL).
		WithSessionStore(session.NewFileStore(dir)).
		WithLogger(logger).
		WithSessionExpiredHandler(func(err error) {
			logger.Warn("session expired", "err", err)
		}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client build: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, client, *loginID, *password, *create); err != nil {
		if errors.Is(err, goDrive.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "stored session is no longer valid; rerun with -login/-password")
		} else {
			fmt.Fprintf(os.Stderr, "smoke run failed: %v\n", err)
		}
		os.Exit(1)
	}

	printMetrics(client.MetricsSnapshot())
}

func run(ctx context.Context, client *goDrive.Client, loginID, password string, create bool) error {
	s, err := client.Rehydrate(ctx)
	if err != nil {
		return fmt.Errorf("rehydrate: %w", err)
	}

	switch {
	case s.IsAuthenticated:
		fmt.Println("reusing stored session")
	case loginID == "" || password == "":
		return errors.New("no stored session; -login and -password are required")
	default:
		if s, err = client.Login(ctx, goDrive.Credentials{LoginID: loginID, Password: password}); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Printf("logged in as %s\n", s.User.Name)
	}

	user, err := client.FetchUser(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	fmt.Printf("profile: #%d %s\n", user.ID, user.Name)

	home, err := client.FetchHome(ctx)
	if err != nil {
		return fmt.Errorf("fetch home: %w", err)
	}
	fmt.Printf("home: %d folders\n", len(home))
	for _, f := range home {
		fmt.Printf("  %s  %s\n", f.ID, f.Name)
	}

	if len(home) > 0 {
		children, err := client.FetchChildFolders(ctx, home[0].ID)
		if err != nil {
			return fmt.Errorf("fetch children of %s: %w", home[0].ID, err)
		}
		fmt.Printf("children of %s: %d\n", home[0].Name, len(children))
	}

	if create {
		name := fmt.Sprintf("smoke-%d", time.Now().Unix())
		folder, err := client.CreateFolder(ctx, name, "")
		if err != nil {
			return fmt.Errorf("create folder: %w", err)
		}
		if folder, err = client.RenameFolder(ctx, folder.ID, name+"-renamed"); err != nil {
			return fmt.Errorf("rename folder %s: %w", folder.ID, err)
		}
		fmt.Printf("scratch folder %s now %q\n", folder.ID, folder.Name)
	}

	return nil
}

func printMetrics(snap goDrive.MetricsSnapshot) {
	names := map[goDrive.MetricID]string{
		goDrive.MetricLoginSuccess:        "login_success",
		goDrive.MetricLoginFailure:        "login_failure",
		goDrive.MetricRefreshSuccess:      "refresh_success",
		goDrive.MetricRefreshFailure:      "refresh_failure",
		goDrive.MetricRefreshCoalesced:    "refresh_coalesced",
		goDrive.MetricRequestRetry:        "request_retry",
		goDrive.MetricRequestReplayed:     "request_replayed",
		goDrive.MetricSessionExpired:      "session_expired",
		goDrive.MetricLogout:              "logout",
		goDrive.MetricProfileFetchSuccess: "profile_fetch_success",
		goDrive.MetricProfileFetchFailure: "profile_fetch_failure",
		goDrive.MetricRehydrate:           "rehydrate",
	}
	fmt.Println("metrics:")
	for id, name := range names {
		if v := snap.Counters[id]; v != 0 {
			fmt.Printf("  %-24s %d\n", name, v)
		}
	}
}
