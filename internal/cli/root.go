// Package cli defines the cobra command tree for nearby.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/app"
	"github.com/evcraddock/nearby/internal/client"
	"github.com/evcraddock/nearby/internal/db"
	"github.com/evcraddock/nearby/internal/localstore"
	"github.com/evcraddock/nearby/internal/logging"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/session"
	"github.com/evcraddock/nearby/internal/view"
)

var (
	flagFormat string
	flagStore  string
	flagDebug  bool
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatHTML = "html"
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nearby",
		Short: "Find student housing near campus",
		Long: "A terminal client for the student-housing marketplace. Browse listings, " +
			"save favorites, publish properties, leave reviews and chat with owners.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(flagDebug)
			switch flagFormat {
			case formatText, formatJSON, formatHTML:
				return nil
			default:
				return fmt.Errorf("invalid format %q (text|json|html)", flagFormat)
			}
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", formatText, "output format (text|json|html)")
	root.PersistentFlags().StringVar(&flagStore, "store", "", "SQLite storage path (default: ~/.config/nearby/storage.db)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log debug output to stderr")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newListCmd(),
		newShowCmd(),
		newFavoritesCmd(),
		newFavoriteCmd(),
		newMineCmd(),
		newPublishCmd(),
		newRoomsCmd(),
		newChatCmd(),
		newContactCmd(),
		newReviewCmd(),
		newReviewsCmd(),
		newVersionCmd(),
	)

	return root
}

// env is one command's application context and the storage behind it.
type env struct {
	app      *app.App
	settings settings
	database *sql.DB
	console  *consoleGate
}

// consoleGate prints notifications to stderr until muted, so the chat
// screen can take over the terminal.
type consoleGate struct {
	muted atomic.Bool
	next  notify.Notifier
}

func (g *consoleGate) Notify(kind notify.Kind, message string) {
	if !g.muted.Load() {
		g.next.Notify(kind, message)
	}
}

type envOptions struct {
	// realtime opens the chat channel for the stored session.
	realtime bool
	// console prints notifications to stderr as they happen.
	console bool
}

// openStore opens the durable client storage using the --store flag or the
// default path.
func openStore() (*sql.DB, error) {
	path := flagStore
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newEnv builds the application from the effective settings and restores
// the stored session.
func newEnv(ctx context.Context, opts envOptions) (*env, error) {
	s := resolveSettings()

	database, err := openStore()
	if err != nil {
		return nil, err
	}

	pg := page.New()
	var notifier notify.Notifier = pg
	var gate *consoleGate
	if opts.console {
		gate = &consoleGate{next: notify.NewConsole(os.Stderr)}
		notifier = notify.Multi(pg, gate)
	}

	origin := client.New(s.APIURL, nil, nil).Origin()
	renderer, err := view.New(origin, s.Locale)
	if err != nil {
		closeDB(database)
		return nil, err
	}

	sess := session.New(localstore.NewSQLStore(database, origin))
	appOpts := app.Options{
		Session:           sess,
		Client:            client.New(s.APIURL, sess, notifier),
		Renderer:          renderer,
		Page:              pg,
		Notifier:          notifier,
		ReconnectAttempts: s.ReconnectAttempts,
	}
	if opts.realtime {
		appOpts.SocketURL = s.SocketURL
	}

	a := app.New(appOpts)
	if err := a.Start(ctx); err != nil {
		closeDB(database)
		return nil, err
	}

	return &env{app: a, settings: s, database: database, console: gate}, nil
}

// muteConsole stops printing notifications to stderr.
func (e *env) muteConsole() {
	if e.console != nil {
		e.console.muted.Store(true)
	}
}

// close shuts the chat channel and the storage.
func (e *env) close() {
	if err := e.app.Close(); err != nil {
		slog.Debug("closing app", "error", err)
	}
	closeDB(e.database)
}

// cliEnv builds the env used by ordinary commands.
func cliEnv(cmd *cobra.Command) (*env, error) {
	return newEnv(cmd.Context(), envOptions{console: true})
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == formatJSON
}

// isHTML returns true if the --format flag is set to html.
func isHTML() bool {
	return flagFormat == formatHTML
}

// printMarkup writes an HTML fragment followed by a newline.
func printMarkup(w io.Writer, markup string) error {
	_, err := fmt.Fprintln(w, markup)
	return err
}
