package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/imagekeeper/internal/client/config"
	"github.com/dmitrijs2005/imagekeeper/internal/netx"
)

var errNotLoggedIn = errors.New("not logged in, run 'login' first")

// apiClient is the slice of netx.Client the commands use.
type apiClient interface {
	SetToken(token string)
	DoJSON(ctx context.Context, method, path string, in, out any) error
	UploadFile(ctx context.Context, method, path, fileField, filePath string, fields map[string]string, out any) error
}

type App struct {
	config  *config.Config
	api     apiClient
	session *session
	reader  *bufio.Reader
	out     io.Writer
	token   string
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		api:     netx.NewClient(c.ServerURL, c.RequestTimeout),
		session: newSession(c.SessionDir),
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run executes args as a single command, or starts the prompt when args
// is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	token, err := a.session.load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	a.setToken(token)

	if len(args) == 0 {
		return a.repl(ctx)
	}
	return a.exec(ctx, args[0], args[1:])
}

func (a *App) setToken(token string) {
	a.token = token
	a.api.SetToken(token)
}

func (a *App) requireLogin() error {
	if a.token == "" {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.help()
		return nil
	case "register":
		return a.register(ctx)
	case "verify":
		return a.verify(ctx, args)
	case "resend":
		return a.resend(ctx, args)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout()
	case "me":
		return a.me(ctx)
	case "profile":
		return a.profile(ctx, args)
	case "passwd":
		return a.passwd(ctx)
	case "upload":
		return a.upload(ctx, args)
	case "images", "list":
		return a.images(ctx)
	case "show":
		return a.show(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands: register, verify, resend, login, logout, me, profile, passwd, upload, images, show, delete, exit")
}

func (a *App) repl(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to imagekeeper CLI (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, "ik> ")
		line, err := a.reader.ReadString('\n')
		parts := strings.Fields(line)

		if len(parts) > 0 {
			if parts[0] == "exit" || parts[0] == "quit" {
				fmt.Fprintln(a.out, "Bye!")
				return nil
			}
			if cmdErr := a.exec(ctx, parts[0], parts[1:]); cmdErr != nil {
				fmt.Fprintln(a.out, "Error:", cmdErr)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// prompt asks for a value unless it was already given as an argument.
func (a *App) prompt(args []string, i int, text string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return GetSimpleText(a.reader, text, a.out)
}
