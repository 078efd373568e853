package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	id, ok := a.svc.Session.Identity()
	if !ok {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s %s)", id.Email, id.Role)
}

// Root prints the welcome banner and runs the REPL over the App's input.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to EduSync CLI (type 'help' for commands)")
	if id, ok := a.svc.Session.Identity(); ok {
		a.printf("Signed in as %s\n", id.DisplayName)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
