// Command srmsctl is a terminal client for the SRMS API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/client"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/guard"
	"github.com/stemsi/srms/internal/logger"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/session"
)

const (
	exitOK       = 0
	exitError    = 1
	exitRedirect = 2
)

// app is shared by every command.
type app struct {
	api     *client.Client
	session *session.Store
	log     zerolog.Logger
}

// command is one srmsctl verb. role is the access it needs; "" means any
// logged-in user, and public commands skip the guard entirely.
type command struct {
	summary string
	role    model.Role
	public  bool
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":      {summary: "Log in and remember the session", public: true, run: runLogin},
	"logout":     {summary: "End the session", public: true, run: runLogout},
	"whoami":     {summary: "Show the logged-in user", run: runWhoami},
	"students":   {summary: "List students", role: model.RoleAdmin, run: runStudents},
	"student":    {summary: "Show one student with results and statistics", role: model.RoleAdmin, run: runStudent},
	"approve":    {summary: "Approve a pending registration", role: model.RoleAdmin, run: runApprove},
	"courses":    {summary: "List courses", run: runCourses},
	"results":    {summary: "List results", role: model.RoleAdmin, run: runResults},
	"import":     {summary: "Queue results from a JSON file for bulk import", role: model.RoleAdmin, run: runImport},
	"dashboard":  {summary: "Show dashboard statistics", role: model.RoleAdmin, run: runDashboard},
	"my-results": {summary: "Show your own results", role: model.RoleStudent, run: runMyResults},
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.LoadClient()
	log := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return exitError
	}

	api := client.New(cfg.APIURL,
		client.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		client.WithLogger(log),
	)
	store := session.New(api, session.NewFileStorage(cfg.StoragePath), log)
	if err := store.Load(); err != nil {
		log.Error().Err(err).Msg("Failed to load session")
		return exitError
	}

	if !cmd.public {
		if err := guard.Require(store, cmd.role); err != nil {
			var redirect *guard.RedirectError
			if errors.As(err, &redirect) {
				needLogin(store, cmd.role)
				return exitRedirect
			}
			return exitError
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{api: api, session: store, log: log}
	if err := cmd.run(ctx, a, args[1:]); err != nil {
		var herr *client.HTTPError
		if errors.As(err, &herr) && herr.Status == http.StatusUnauthorized && !cmd.public {
			store.Logout()
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `srmsctl login` again.")
			return exitRedirect
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitError
	}
	return exitOK
}

func needLogin(store *session.Store, role model.Role) {
	access := guard.Check(store, role)
	switch {
	case !access.IsAuthenticated:
		fmt.Fprintln(os.Stderr, "You are not logged in. Run `srmsctl login` first.")
	default:
		fmt.Fprintf(os.Stderr, "This command needs a %s account; you are logged in as %s.\n", role, access.User.Role)
	}
	fmt.Fprintf(os.Stderr, "Redirecting to %s\n", guard.LoginRoute)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: srmsctl <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment: SRMS_API_URL, SRMS_STORAGE_PATH, LOG_LEVEL")
}
