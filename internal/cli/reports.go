package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/reports"
)

const dateLayout = "2006-01-02"

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "sort", Value: string(reports.SortDate), Usage: "date, name or author"},
		&cli.StringFlag{Name: "out", Usage: "directory for the XLSX file (default REPORTS_DIR)"},
	}
}

func (s *shell) reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "print a report and export it as XLSX",
		Subcommands: []*cli.Command{
			{
				Name:  "period",
				Usage: "books, wishlist and categories created in a date range",
				Flags: append(reportFlags(),
					&cli.StringFlag{Name: "from", Required: true, Usage: "first day, YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Required: true, Usage: "last day, YYYY-MM-DD"},
				),
				Action: s.reportAction(func(c *cli.Context, app *entrypoint.App, userID uint, key reports.SortKey) (*reports.Report, error) {
					from, err := time.Parse(dateLayout, c.String("from"))
					if err != nil {
						return nil, fmt.Errorf("invalid --from: %w", err)
					}
					to, err := time.Parse(dateLayout, c.String("to"))
					if err != nil {
						return nil, fmt.Errorf("invalid --to: %w", err)
					}
					return app.Reports.Period(userID, from, to, key)
				}),
			},
			{
				Name:      "category",
				Usage:     "books in one category",
				ArgsUsage: "<name>",
				Flags:     reportFlags(),
				Action: s.reportAction(func(c *cli.Context, app *entrypoint.App, userID uint, key reports.SortKey) (*reports.Report, error) {
					category, err := app.Library.Categories.FindCategoryByName(userID, c.Args().First())
					if err != nil {
						return nil, err
					}
					if category == nil {
						return nil, ErrCategoryNotFound
					}
					return app.Reports.Category(userID, category, key)
				}),
			},
			{
				Name:  "full",
				Usage: "everything in the library",
				Flags: reportFlags(),
				Action: s.reportAction(func(c *cli.Context, app *entrypoint.App, userID uint, key reports.SortKey) (*reports.Report, error) {
					return app.Reports.Full(userID, key)
				}),
			},
		},
	}
}

type reportFunc func(c *cli.Context, app *entrypoint.App, userID uint, key reports.SortKey) (*reports.Report, error)

// reportAction builds a report, prints its summary and saves the workbook.
func (s *shell) reportAction(build reportFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		key, err := reports.ParseSortKey(c.String("sort"))
		if err != nil {
			return err
		}
		app, session, err := s.session(c)
		if err != nil {
			return err
		}

		report, err := build(c, app, session.UserID, key)
		if err != nil {
			return err
		}
		if err := report.WriteText(c.App.Writer); err != nil {
			return err
		}

		dir := c.String("out")
		if dir == "" {
			dir = s.cfg.Reports.Dir
		}
		path, err := report.SaveXLSX(dir, time.Now())
		if errors.Is(err, reports.ErrEmptyReport) {
			s.printf(c, "Nothing to export\n")
			return nil
		}
		if err != nil {
			return err
		}
		s.printf(c, "\nSaved %s\n", path)
		return nil
	}
}
