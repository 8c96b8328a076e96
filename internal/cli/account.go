package cli

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookshelf/internal/auth"
)

func (s *shell) initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create or upgrade the library database",
		Action: func(c *cli.Context) error {
			if _, err := s.application(); err != nil {
				return err
			}
			s.printf(c, "Library ready at %s\n", s.cfg.Database.Path)
			return nil
		},
	}
}

// effectiveConfig is the YAML shape printed by the config command.
type effectiveConfig struct {
	Database struct {
		Path     string `yaml:"path"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"database"`
	Library struct {
		BooksDir  string `yaml:"books_dir"`
		CoversDir string `yaml:"covers_dir"`
	} `yaml:"library"`
	Render struct {
		Backend string `yaml:"backend"`
		Workers int    `yaml:"workers"`
		DPI     int    `yaml:"dpi"`
	} `yaml:"render"`
	Catalog struct {
		BaseURL      string `yaml:"base_url"`
		Timeout      string `yaml:"timeout"`
		RateInterval string `yaml:"rate_interval"`
	} `yaml:"catalog"`
	ReportsDir string `yaml:"reports_dir"`
	LogLevel   string `yaml:"log_level"`
}

func (s *shell) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration as YAML",
		Action: func(c *cli.Context) error {
			var out effectiveConfig
			out.Database.Path = s.cfg.Database.Path
			out.Database.LogLevel = s.cfg.Database.LogLevel
			out.Library.BooksDir = s.cfg.Library.BooksDir
			out.Library.CoversDir = s.cfg.Library.CoversDir
			out.Render.Backend = s.cfg.Render.Backend
			out.Render.Workers = s.cfg.Render.Workers
			out.Render.DPI = s.cfg.Render.DPI
			out.Catalog.BaseURL = s.cfg.Catalog.BaseURL
			out.Catalog.Timeout = s.cfg.Catalog.Timeout.String()
			out.Catalog.RateInterval = s.cfg.Catalog.RateInterval.String()
			out.ReportsDir = s.cfg.Reports.Dir
			out.LogLevel = s.cfg.Log.Level

			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (s *shell) registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account for --login/--password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "display name", Required: true},
			&cli.StringFlag{Name: "email", Usage: "email address", Required: true},
		},
		Action: func(c *cli.Context) error {
			app, err := s.application()
			if err != nil {
				return err
			}
			err = app.Auth.Register(auth.Registration{
				Name:     c.String("name"),
				Email:    c.String("email"),
				Login:    c.String("login"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}
			s.printf(c, "Registered %s\n", c.String("login"))
			return nil
		},
	}
}

func (s *shell) whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the logged-in account",
		Action: func(c *cli.Context) error {
			app, session, err := s.session(c)
			if err != nil {
				return err
			}
			count, err := app.Library.Books.CountBooks(session.UserID)
			if err != nil {
				return err
			}
			s.printf(c, "%s (%s) <%s>, %d books\n", session.UserName, session.Login, session.Email, count)
			return nil
		},
	}
}

func (s *shell) profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "change display name and email",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "new display name"},
			&cli.StringFlag{Name: "email", Usage: "new email address"},
		},
		Action: func(c *cli.Context) error {
			app, session, err := s.session(c)
			if err != nil {
				return err
			}
			name, email := session.UserName, session.Email
			if c.IsSet("name") {
				name = c.String("name")
			}
			if c.IsSet("email") {
				email = c.String("email")
			}
			if err := app.Auth.UpdateProfile(session, name, email); err != nil {
				return err
			}
			s.printf(c, "Profile updated: %s <%s>\n", session.UserName, session.Email)
			return nil
		},
	}
}
