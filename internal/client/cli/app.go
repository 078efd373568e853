package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/services"
	"github.com/edusync/edusync-client/internal/logging"
)

// Services groups the components the App drives.
type Services struct {
	Session   *services.SessionService
	Resources *services.ResourceService
	Search    *services.SearchService
	Avatar    *services.AvatarService
	Settings  *services.SettingsService
	Bus       *events.Bus
	Warnings  *services.StorageWarnings
}

type App struct {
	svc Services

	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(s Services, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{svc: s, log: log, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.svc.Session.IsAuthenticated()
}

// storageWarning reports a local write that failed since the last call.
func (a *App) storageWarning() error {
	return a.svc.Warnings.Take()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// Run restores the previous session, announces changes made by other tabs
// and blocks in the REPL until the user quits.
func (a *App) Run(ctx context.Context) {
	a.svc.Session.Restore(ctx)
	stop := a.Watch()
	defer stop()
	a.Root(ctx)
}
