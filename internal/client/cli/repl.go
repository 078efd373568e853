package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edusync/edusync-client/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	storageWarning() error

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Add(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error

	Favorite(ctx context.Context, args []string) error
	Favorites(ctx context.Context) error
	Recent(ctx context.Context) error
	History(ctx context.Context) error
	ClearData(ctx context.Context) error

	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Queries(ctx context.Context, args []string) error

	Avatar(ctx context.Context, args []string) error
	Settings(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, (l)ist, open, fav, favorites, recent, history, search, filter, queries, clear, exit"
	helpSignedIn  = "Available commands: whoami, (l)ist, refresh, add, upload, edit, delete, open, download, fav, favorites, recent, history, search, filter, queries, clear, avatar, settings, logout, exit"
)

// runREPL starts a read–eval–print loop for the EduSync CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the remaining tokens to the handler. Handlers prompting for more
// input read from the same reader. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Errors returned by handlers are reported to the user and never stop the
// loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("edusync %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)

		case "l", "list":
			err = a.List(ctx)
		case "refresh":
			err = a.Refresh(ctx)
		case "add":
			err = a.Add(ctx)
		case "upload":
			err = a.Upload(ctx, args)
		case "edit":
			err = a.Edit(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "open":
			err = a.Open(ctx, args)
		case "download":
			err = a.Download(ctx, args)

		case "fav":
			err = a.Favorite(ctx, args)
		case "favorites":
			err = a.Favorites(ctx)
		case "recent":
			err = a.Recent(ctx)
		case "history":
			err = a.History(ctx)
		case "clear":
			err = a.ClearData(ctx)

		case "search", "s":
			err = a.Search(ctx, args)
		case "filter":
			err = a.Filter(ctx, args)
		case "queries":
			err = a.Queries(ctx, args)

		case "avatar":
			err = a.Avatar(ctx, args)
		case "settings":
			err = a.Settings(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", describe(err))
		}
		if w := a.storageWarning(); w != nil {
			printlnFn("Warning: changes could not be saved locally:", w)
		}
	}
}

// describe renders err for the user. Remote failures show their
// user-facing message only.
func describe(err error) string {
	var re *common.RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	if errors.Is(err, common.ErrNotAuthenticated) {
		return "please log in first"
	}
	if errors.Is(err, common.ErrNotFound) {
		return "no such resource"
	}
	return err.Error()
}
