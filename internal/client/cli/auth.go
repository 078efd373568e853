package cli

import (
	"context"

	"github.com/edusync/edusync-client/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields and creates the account. It does
// not sign the user in.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	prompts := []struct {
		text string
		dst  *string
	}{
		{"Enter first name", &req.FirstName},
		{"Enter last name", &req.LastName},
		{"Enter email", &req.Email},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	req.Password = password

	role, err := getSimpleText(a.reader, "Enter role (student|faculty)", a.out)
	if err != nil {
		return err
	}
	req.Role = models.Role(role)

	if _, err := a.svc.Session.Register(ctx, req); err != nil {
		return err
	}

	a.println("Account created, you can log in now.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	id, err := a.svc.Session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.printf("Welcome, %s!\n", id.DisplayName)
	return nil
}

// Logout signs out. Local state is cleared even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	if err := a.svc.Session.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout reported an error", "err", err)
		a.println("Logged out locally.")
		return err
	}
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the current identity and its profile picture URL.
func (a *App) WhoAmI(ctx context.Context) error {
	id, ok := a.svc.Session.Identity()
	if !ok {
		a.println("Not logged in.")
		return nil
	}

	a.printf("%s <%s> %s\n", id.DisplayName, id.Email, id.Role)
	if url, ok := a.svc.Avatar.URL(ctx); ok {
		a.printf("Profile picture: %s\n", url)
	}
	return nil
}
