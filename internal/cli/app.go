// Package cli is the bookshelf command tree. Commands validate their input,
// resolve the user session from the global credentials and call into the
// services built by entrypoint.Bootstrap.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/logging"
)

var ErrNotLoggedIn = errors.New("credentials required: pass --login and --password or set BOOKSHELF_LOGIN and BOOKSHELF_PASSWORD")

// Options customizes how the application is assembled. Zero values use the
// environment-driven configuration and the process's standard streams.
type Options struct {
	Version    string
	LoadConfig func() (*config.Config, error)
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// shell holds per-process state shared by the commands. The application is
// bootstrapped lazily so commands like config never touch the database.
type shell struct {
	opts   Options
	cfg    *config.Config
	logger *zap.Logger
	app    *entrypoint.App
	input  *bufio.Reader
}

// NewApp builds the command tree.
func NewApp(opts Options) *cli.App {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.NewConfig
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &shell{opts: opts, input: bufio.NewReader(opts.Stdin)}
	return &cli.App{
		Name:      "bookshelf",
		Usage:     "personal e-book library",
		Version:   opts.Version,
		Reader:    opts.Stdin,
		Writer:    opts.Stdout,
		ErrWriter: opts.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "login",
				Aliases: []string{"u"},
				Usage:   "account login",
				EnvVars: []string{"BOOKSHELF_LOGIN"},
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "account password",
				EnvVars: []string{"BOOKSHELF_PASSWORD"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override LOG_LEVEL (debug, info, warn, error)",
			},
		},
		Before: s.before,
		After:  s.after,
		Commands: []*cli.Command{
			s.initCommand(),
			s.configCommand(),
			s.registerCommand(),
			s.whoamiCommand(),
			s.profileCommand(),
			s.importCommand(),
			s.editCommand(),
			s.booksCommand(),
			s.bookCommand(),
			s.categoriesCommand(),
			s.wishlistCommand(),
			s.reportCommand(),
		},
	}
}

func (s *shell) before(c *cli.Context) error {
	cfg, err := s.opts.LoadConfig()
	if err != nil {
		return err
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = logger
	return nil
}

func (s *shell) after(c *cli.Context) error {
	if s.app != nil {
		if err := s.app.Close(); err != nil {
			s.logger.Warn("failed to close database", zap.Error(err))
		}
		s.app = nil
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return nil
}

// application bootstraps the library on first use.
func (s *shell) application() (*entrypoint.App, error) {
	if s.app == nil {
		app, err := entrypoint.Bootstrap(s.cfg, s.logger)
		if err != nil {
			return nil, err
		}
		s.app = app
	}
	return s.app, nil
}

// session logs in with the global credentials.
func (s *shell) session(c *cli.Context) (*entrypoint.App, *auth.Session, error) {
	app, err := s.application()
	if err != nil {
		return nil, nil, err
	}
	login, password := c.String("login"), c.String("password")
	if login == "" || password == "" {
		return nil, nil, ErrNotLoggedIn
	}
	session, err := app.Auth.Login(login, password)
	if err != nil {
		return nil, nil, err
	}
	return app, session, nil
}

// confirm asks a yes/no question on the command's streams. Anything but an
// explicit yes is a no.
func (s *shell) confirm(c *cli.Context, question string) (bool, error) {
	fmt.Fprintf(c.App.Writer, "%s [y/N] ", question)
	answer, err := s.input.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (s *shell) printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}
