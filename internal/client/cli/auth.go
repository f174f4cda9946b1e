package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// report prints err for the user and returns it. An unauthorized answer means
// the saved session is gone, so the local one is dropped too.
func (a *App) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrUnauthorized) && a.session != nil:
		a.session = nil
		fmt.Fprintln(a.out, "Session expired, please login again")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}

// Register prompts for display name, username and password and creates the
// account. A taken username is reported, not returned as an error.
func (a *App) Register(ctx context.Context) error {
	displayName, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if displayName == "" {
		displayName = username
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ok, err := a.authService.Register(ctx, displayName, username, password)
	if err != nil {
		return a.report(err)
	}
	if !ok {
		fmt.Fprintf(a.out, "Username %q is already taken\n", username)
		return nil
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and starts a session. Wrong password and
// unknown user are reported the same way.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	session, err := a.authService.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid username or password")
			return err
		}
		return a.report(err)
	}

	a.session = session
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Logout(ctx); err != nil {
		return a.report(err)
	}
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the profile of the logged-in account.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	p, err := a.taskService.Profile(ctx)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "%s (%s), %d task(s), member since %s\n",
		p.DisplayName, p.Username, len(p.Tasks), p.CreatedAt.Format("2006-01-02"))
	if a.session != nil && !a.session.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "session valid until %s\n", a.session.ExpiresAt.Local().Format("15:04:05"))
	}
	return nil
}

// Unregister deletes the logged-in account after a confirmation.
func (a *App) Unregister(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Type the username to confirm account deletion", a.out)
	if err != nil {
		return err
	}
	if a.session == nil || answer != a.session.Username {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	deleted, err := a.authService.DeleteAccount(ctx)
	if err != nil {
		return a.report(err)
	}
	if deleted {
		a.session = nil
		fmt.Fprintln(a.out, "Account deleted")
	} else {
		fmt.Fprintln(a.out, "Nothing was deleted")
	}
	return nil
}
