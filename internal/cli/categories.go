package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

var (
	ErrCategoryExists   = errors.New("you already have a category with this name")
	ErrCategoryNotFound = errors.New("category not found")
)

func (s *shell) categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "manage book categories",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "create a category",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
				},
				Action: func(c *cli.Context) error {
					name := strings.TrimSpace(c.Args().First())
					if name == "" {
						return fmt.Errorf("category name is required")
					}
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					added, err := app.Library.Categories.AddCategory(name, session.UserID, c.String("description"))
					if err != nil {
						return err
					}
					if !added {
						return ErrCategoryExists
					}
					s.printf(c, "Category %q added\n", name)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list categories",
				Action: func(c *cli.Context) error {
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					categories, err := app.Library.Categories.GetUserCategories(session.UserID)
					if err != nil {
						return err
					}
					if len(categories) == 0 {
						s.printf(c, "No categories\n")
						return nil
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
					for _, category := range categories {
						fmt.Fprintf(w, "%d\t%s\t%s\n", category.ID, category.Name, category.Description)
					}
					return w.Flush()
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a category; its books become uncategorized",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					category, err := app.Library.Categories.FindCategoryByName(session.UserID, c.Args().First())
					if err != nil {
						return err
					}
					if category == nil {
						return ErrCategoryNotFound
					}
					if _, err := app.Library.Categories.DeleteCategory(category.ID, session.UserID); err != nil {
						return err
					}
					s.printf(c, "Category %q deleted\n", category.Name)
					return nil
				},
			},
		},
	}
}
