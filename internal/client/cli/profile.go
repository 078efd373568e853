package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/edusync/edusync-client/internal/client/models"
)

// Avatar manages the profile picture:
//
//	avatar [show]
//	avatar upload <path>
//	avatar preview <path>
//	avatar remove
func (a *App) Avatar(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch {
	case sub == "show" && len(args) <= 1:
		url, ok := a.svc.Avatar.URL(ctx)
		if !ok {
			a.println("No profile picture.")
			return nil
		}
		a.println(url)

	case (sub == "upload" || sub == "preview") && len(args) == 2:
		file, err := LoadFile(args[1])
		if err != nil {
			return err
		}
		if sub == "preview" {
			data, err := a.svc.Avatar.Preview(file)
			if err != nil {
				return err
			}
			a.printf("%s (%d bytes as data URL)\n", file.Name, len(data))
			return nil
		}
		url, err := a.svc.Avatar.Upload(ctx, file)
		if err != nil {
			return err
		}
		a.printf("Profile picture updated: %s\n", url)

	case sub == "remove" && len(args) == 1:
		if err := a.svc.Avatar.Remove(ctx); err != nil {
			a.println("Profile picture removed locally.")
			return err
		}
		a.println("Profile picture removed.")

	default:
		return errUsage
	}
	return nil
}

// Settings shows, changes or resets the preferences of the current user:
//
//	settings
//	settings set key=value ...
//	settings reset
func (a *App) Settings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printSettings(a.svc.Settings.Load(ctx))
		return nil
	}

	switch args[0] {
	case "reset":
		if len(args) != 1 {
			return errUsage
		}
		if err := a.svc.Settings.Reset(ctx); err != nil {
			return err
		}
		a.println("Settings reset to defaults.")
		return nil

	case "set":
		st := a.svc.Settings.Load(ctx)
		for _, arg := range args[1:] {
			if err := applySetting(&st, arg); err != nil {
				return err
			}
		}
		if err := a.svc.Settings.Save(ctx, st); err != nil {
			return err
		}
		a.printSettings(st)
		return nil
	}
	return errUsage
}

func (a *App) printSettings(st models.Settings) {
	a.printf("email-notifications=%t\n", st.EmailNotifications)
	a.printf("resource-updates=%t\n", st.ResourceUpdates)
	a.printf("academic-reminders=%t\n", st.AcademicReminders)
	a.printf("visibility=%s\n", st.ProfileVisibility)
	a.printf("show-email=%t\n", st.ShowEmail)
	a.printf("session-timeout=%s\n", st.SessionTimeout)
}

func applySetting(st *models.Settings, arg string) error {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("setting %q: want key=value: %w", arg, errUsage)
	}

	var flag *bool
	switch key {
	case "email-notifications":
		flag = &st.EmailNotifications
	case "resource-updates":
		flag = &st.ResourceUpdates
	case "academic-reminders":
		flag = &st.AcademicReminders
	case "show-email":
		flag = &st.ShowEmail
	case "visibility":
		st.ProfileVisibility = value
		return nil
	case "session-timeout":
		st.SessionTimeout = value
		return nil
	default:
		return fmt.Errorf("unknown setting %q: %w", key, errUsage)
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	*flag = b
	return nil
}
