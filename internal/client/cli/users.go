package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type user struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	Message string `json:"message"`
	User    *user  `json:"user"`
}

func (a *App) printUser(u *user) {
	if u == nil {
		return
	}
	fmt.Fprintf(a.out, "ID:       %s\n", u.ID)
	fmt.Fprintf(a.out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	if u.ProfilePicture != nil {
		fmt.Fprintf(a.out, "Avatar:   %s\n", *u.ProfilePicture)
	}
}

func (a *App) register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}

	req := map[string]string{"username": username, "email": email, "password": string(password)}
	var resp struct {
		Message string `json:"message"`
		OTP     string `json:"otp"`
	}
	if err := a.api.DoJSON(ctx, http.MethodPost, "/api/users/register", req, &resp); err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	if resp.OTP != "" {
		fmt.Fprintln(a.out, "OTP:", resp.OTP)
	}
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	email, err := a.prompt(args, 0, "Email")
	if err != nil {
		return err
	}
	otp, err := a.prompt(args, 1, "OTP")
	if err != nil {
		return err
	}

	var resp messageResponse
	if err := a.api.DoJSON(ctx, http.MethodPost, "/api/users/verify-otp", map[string]string{"email": email, "otp": otp}, &resp); err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func (a *App) resend(ctx context.Context, args []string) error {
	email, err := a.prompt(args, 0, "Email")
	if err != nil {
		return err
	}

	var resp struct {
		Message string `json:"message"`
		OTP     string `json:"otp"`
	}
	if err := a.api.DoJSON(ctx, http.MethodPost, "/api/users/send-otp", map[string]string{"email": email}, &resp); err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	if resp.OTP != "" {
		fmt.Fprintln(a.out, "OTP:", resp.OTP)
	}
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}

	var resp struct {
		Token string `json:"token"`
		User  user   `json:"user"`
	}
	if err := a.api.DoJSON(ctx, http.MethodPost, "/api/users/login", map[string]string{"email": email, "password": string(password)}, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("server returned no token")
	}

	if err := a.session.save(resp.Token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.setToken(resp.Token)

	fmt.Fprintf(a.out, "Logged in as %s\n", resp.User.Username)
	return nil
}

func (a *App) logout() error {
	if err := a.session.clear(); err != nil {
		return err
	}
	a.setToken("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) me(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	var resp userResponse
	if err := a.api.DoJSON(ctx, http.MethodGet, "/api/users/me", nil, &resp); err != nil {
		return err
	}
	a.printUser(resp.User)
	return nil
}

// profile prompts for a new username and email (blank keeps the current
// value). An optional first argument is an avatar image to upload.
func (a *App) profile(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, "New username (blank to keep)", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "New email (blank to keep)", a.out)
	if err != nil {
		return err
	}

	var resp userResponse

	if len(args) > 0 {
		fields := map[string]string{}
		if username != "" {
			fields["username"] = username
		}
		if email != "" {
			fields["email"] = email
		}
		err = a.api.UploadFile(ctx, http.MethodPut, "/api/users/profile", "profilePicture", args[0], fields, &resp)
	} else {
		req := map[string]*string{}
		if username != "" {
			req["username"] = &username
		}
		if email != "" {
			req["email"] = &email
		}
		err = a.api.DoJSON(ctx, http.MethodPut, "/api/users/profile", req, &resp)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	a.printUser(resp.User)
	return nil
}

func (a *App) passwd(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	newPassword, err := GetPassword(a.out, "New password: ")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.out, "Confirm password: ")
	if err != nil {
		return err
	}

	req := map[string]string{"newPassword": string(newPassword), "confirmPassword": string(confirm)}
	var resp messageResponse
	if err := a.api.DoJSON(ctx, http.MethodPost, "/api/users/reset-password", req, &resp); err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}
