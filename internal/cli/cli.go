// Package cli implements the pingme command line client. Each command mounts
// the matching view, runs one action and prints the resulting state.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"pingme/internal/config"
	"pingme/internal/kv"
	"pingme/internal/mockstore"
	"pingme/internal/models"
	"pingme/internal/provider"
	"pingme/internal/remote"
	"pingme/internal/session"
	"pingme/internal/view"
)

const usage = `usage: pingme [-o text|json|yaml] [-ephemeral] [-api URL] <command> [args]

commands:
  login <email> <password>          log in (admin@teste.com / 123456 uses local mock data)
  signup <name> <email> <password>  create an account
  logout                            clear the session and mock data
  whoami                            show the logged-in user
  feed [-q term]                    list posts, optionally filtered
  post create -t title -b body [-tags t] [-photo url]
  post edit <id> [-t title] [-b body] [-tags t] [-photo url]
  post delete <id>
  like <postId>                     toggle your like on a post
  show <postId>                     post with its comments
  comment add <postId> <text...>
  comment delete <postId> <commentId>
  profile [userId]                  a profile and its posts
  profile edit [-name n] [-bio b] [-photo url]
  share <postId>                    print and copy the post link
`

// UsageError reports a malformed command line.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// CLI holds the process-wide collaborators of one invocation.
type CLI struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
	// OpenStore overrides how the persisted namespace is opened.
	OpenStore func(ctx context.Context, cfg *config.Config) (kv.Store, error)

	format   string
	store    kv.Store
	client   *remote.Client
	mock     *mockstore.Store
	sessions *session.Manager
}

// New returns a CLI over cfg writing to stdout and stderr.
func New(cfg *config.Config, stdout, stderr io.Writer) *CLI {
	return &CLI{Config: cfg, Stdout: stdout, Stderr: stderr, OpenStore: kv.Open}
}

// Usage prints the command summary.
func (c *CLI) Usage() {
	fmt.Fprint(c.Stderr, usage)
}

// Run parses args and executes one command.
func (c *CLI) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pingme", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("o", "text", "output format: text, json or yaml")
	ephemeral := fs.Bool("ephemeral", false, "keep the session in memory for this run only")
	apiURL := fs.String("api", "", "override API_BASE_URL")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("%v", err)
	}
	switch *format {
	case formatText, formatJSON, formatYAML:
		c.format = *format
	default:
		return usageErrorf("unknown output format %q", *format)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return usageErrorf("missing command")
	}

	if err := c.open(ctx, *ephemeral, *apiURL); err != nil {
		return err
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "login":
		return c.login(ctx, cmdArgs)
	case "signup":
		return c.signup(ctx, cmdArgs)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "feed":
		return c.feed(ctx, cmdArgs)
	case "post":
		return c.post(ctx, cmdArgs)
	case "like":
		return c.like(ctx, cmdArgs)
	case "show":
		return c.show(ctx, cmdArgs)
	case "comment":
		return c.comment(ctx, cmdArgs)
	case "profile":
		return c.profile(ctx, cmdArgs)
	case "share":
		return c.share(ctx, cmdArgs)
	case "help":
		c.Usage()
		return nil
	default:
		return usageErrorf("unknown command %q", cmd)
	}
}

func (c *CLI) open(ctx context.Context, ephemeral bool, apiURL string) error {
	if ephemeral {
		c.store = kv.NewMemoryStore()
	} else {
		store, err := c.OpenStore(ctx, c.Config)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		c.store = store
	}

	if apiURL == "" {
		apiURL = c.Config.APIBaseURL
	}
	c.client = remote.NewClient(apiURL)
	c.mock = mockstore.New(c.store)
	c.sessions = session.NewManager(c.store, c.mock, c.client)

	if s, err := c.sessions.Current(ctx); err == nil {
		c.client.SetToken(s.AccessToken)
	}
	return nil
}

// deps selects the provider for this run and assembles the view collaborators.
func (c *CLI) deps(ctx context.Context) (view.Deps, error) {
	p, err := provider.Select(ctx, c.mock, c.client)
	if err != nil {
		return view.Deps{}, err
	}
	return view.Deps{
		Session:   c.sessions,
		Provider:  p,
		Origin:    c.Config.AppOrigin,
		Clipboard: &writerClipboard{w: c.Stdout, quiet: c.format != formatText},
		Notifier:  &writerNotifier{w: c.Stderr},
	}, nil
}

// Describe turns an error into the line shown to the user.
func Describe(err error) string {
	if errors.Is(err, models.ErrLoginRequired) {
		return "login required: run `pingme login <email> <password>`"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code) + ": " + appErr.Message
	}
	return err.Error()
}
