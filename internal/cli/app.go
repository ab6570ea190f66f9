// Package cli implements draftctl, the terminal client for a draftdeck
// server. Each invocation runs one command; the access token is kept in a
// session file between invocations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/draftdeck/internal/client"
)

// DefaultServer is used when neither --server nor DRAFTDECK_URL is set.
const DefaultServer = "http://localhost:8000"

// App holds the terminal streams shared by all commands.
type App struct {
	in         *bufio.Reader
	out        io.Writer
	httpClient *http.Client
}

// AppOption configures an App.
type AppOption func(*App)

// WithHTTPClient sets the HTTP client used to reach the server.
func WithHTTPClient(hc *http.Client) AppOption {
	return func(a *App) { a.httpClient = hc }
}

// NewApp creates an App reading from in and writing to out.
func NewApp(in io.Reader, out io.Writer, opts ...AppOption) *App {
	a := &App{in: bufio.NewReader(in), out: out}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Command builds the draftctl command tree.
func (a *App) Command() *cli.Command {
	return &cli.Command{
		Name:   "draftctl",
		Usage:  "Author AI-assisted documents and slide decks on a draftdeck server",
		Writer: a.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Server base URL",
				Value:   DefaultServer,
				Sources: cli.EnvVars("DRAFTDECK_URL"),
			},
			&cli.StringFlag{
				Name:    "session",
				Usage:   "File holding the access token",
				Value:   DefaultSessionPath(),
				Sources: cli.EnvVars("DRAFTDECK_SESSION"),
			},
		},
		Commands: []*cli.Command{
			{Name: "register", Usage: "Create an account and log in", ArgsUsage: "[email]", Action: a.register},
			{Name: "login", Usage: "Log in", ArgsUsage: "[email]", Action: a.login},
			{Name: "logout", Usage: "Forget the saved token", Action: a.logout},
			{Name: "projects", Usage: "List projects", Action: a.projects},
			{
				Name:      "create",
				Usage:     "Create a project",
				ArgsUsage: "<title> [section title...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "docx", Usage: "docx or pptx"},
					&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "Topic for generated content"},
				},
				Action: a.create,
			},
			{Name: "open", Usage: "Show a project and its sections", ArgsUsage: "<project-id>", Action: a.open},
			{Name: "delete", Usage: "Delete a project", ArgsUsage: "<project-id>", Action: a.deleteProject},
			{Name: "generate", Usage: "Generate content for every section", ArgsUsage: "<project-id>", Action: a.generate},
			{Name: "suggest", Usage: "Suggest an outline, edit it, then apply it", ArgsUsage: "<project-id> [count]", Action: a.suggest},
			{Name: "apply", Usage: "Append sections from titles", ArgsUsage: "<project-id> <title...>", Action: a.apply},
			{Name: "refine", Usage: "Rewrite a section with AI", ArgsUsage: "<section-id> <instructions...>", Action: a.refine},
			{
				Name:      "save",
				Usage:     "Replace a section's content with text read from stdin",
				ArgsUsage: "<section-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "if-match", Usage: "Checksum the current content must have"},
				},
				Action: a.save,
			},
			{Name: "comment", Usage: "Comment on a section", ArgsUsage: "<section-id> <text...>", Action: a.comment},
			{
				Name:      "export",
				Usage:     "Download a project as docx or pptx",
				ArgsUsage: "<project-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "Output directory"},
				},
				Action: a.export,
			},
			{Name: "search", Usage: "Search section titles and content", ArgsUsage: "<query...>", Action: a.search},
		},
	}
}

// session returns the API client with the saved token, and the session path.
func (a *App) session(cmd *cli.Command) (*client.Client, string, error) {
	root := cmd.Root()
	path := root.String("session")
	token, err := LoadToken(path)
	if err != nil {
		return nil, "", err
	}
	opts := []client.Option{client.WithToken(token)}
	if a.httpClient != nil {
		opts = append(opts, client.WithHTTPClient(a.httpClient))
	}
	return client.New(root.String("server"), opts...), path, nil
}

func argID(cmd *cli.Command, i int, name string) (int64, error) {
	raw := cmd.Args().Get(i)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func restArgs(cmd *cli.Command, from int, name string) (string, error) {
	args := cmd.Args().Slice()
	if len(args) <= from {
		return "", fmt.Errorf("missing %s", name)
	}
	return strings.Join(args[from:], " "), nil
}

func (a *App) credentials(cmd *cli.Command) (string, string, error) {
	email := cmd.Args().First()
	if email == "" {
		var err error
		if email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
			return "", "", err
		}
	}
	password, err := GetPassword(a.in, a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) register(ctx context.Context, cmd *cli.Command) error {
	return a.authenticate(ctx, cmd, (*client.Client).Register, "Registered")
}

func (a *App) login(ctx context.Context, cmd *cli.Command) error {
	return a.authenticate(ctx, cmd, (*client.Client).Login, "Logged in")
}

func (a *App) authenticate(ctx context.Context, cmd *cli.Command, fn func(*client.Client, context.Context, string, string) error, done string) error {
	c, path, err := a.session(cmd)
	if err != nil {
		return err
	}
	email, password, err := a.credentials(cmd)
	if err != nil {
		return err
	}
	if err := fn(c, ctx, email, password); err != nil {
		return err
	}
	if err := SaveToken(path, c.Token()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s as %s\n", done, email)
	return nil
}

func (a *App) logout(_ context.Context, cmd *cli.Command) error {
	if err := ClearToken(cmd.Root().String("session")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

var (
	errNotLoggedIn = errors.New("not logged in; run draftctl login")
	errNoContent   = errors.New("No content to save")
)

func (a *App) authed(cmd *cli.Command) (*client.Client, error) {
	c, _, err := a.session(cmd)
	if err != nil {
		return nil, err
	}
	if c.Token() == "" {
		return nil, errNotLoggedIn
	}
	return c, nil
}
