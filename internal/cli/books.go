package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/importers"
)

func metadataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "book title"},
		&cli.StringFlag{Name: "author", Usage: "author"},
		&cli.IntFlag{Name: "year", Usage: "publication year"},
		&cli.StringFlag{Name: "category", Usage: "category name (empty to clear)"},
		&cli.StringFlag{Name: "cover", Usage: "custom cover image file"},
	}
}

// resolveCategory maps a category name to the user's category ID. An empty
// name means no category.
func resolveCategory(app *entrypoint.App, session *auth.Session, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	category, err := app.Library.Categories.FindCategoryByName(session.UserID, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: %q", importers.ErrUnknownCategory, name)
	}
	return &category.ID, nil
}

func (s *shell) importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "add a PDF to the library",
		ArgsUsage: "<file>",
		Flags: append(metadataFlags(),
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
		),
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one file to import")
			}
			app, session, err := s.session(c)
			if err != nil {
				return err
			}
			categoryID, err := resolveCategory(app, session, c.String("category"))
			if err != nil {
				return err
			}

			draft, err := app.Importer.Begin(c.Context, session, c.Args().First())
			if err != nil {
				return err
			}
			s.printf(c, "File: %s (%d pages)\n", draft.SourcePath(), draft.PageCount())
			s.printf(c, "Cover preview: %s\n", draft.CoverPath())

			meta := importers.Metadata{
				Title:           c.String("title"),
				Author:          c.String("author"),
				PublicationYear: c.Int("year"),
				CategoryID:      categoryID,
				CoverPath:       c.String("cover"),
			}
			if meta.Title == "" {
				meta.Title = draft.DefaultTitle()
			}

			if !c.Bool("yes") {
				ok, err := s.confirm(c, fmt.Sprintf("Import %q?", meta.Title))
				if err != nil || !ok {
					draft.Cancel()
					if err == nil {
						s.printf(c, "Import cancelled\n")
					}
					return err
				}
			}

			book, err := draft.Confirm(c.Context, meta)
			if err != nil {
				if draft.State() == importers.StateCollectMetadata {
					draft.Cancel()
				}
				return err
			}
			s.printf(c, "Imported book #%d: %s\n", book.ID, book.Title)
			return nil
		},
	}
}

func (s *shell) editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "change a book's metadata; omitted flags keep their values",
		ArgsUsage: "<book-id>",
		Flags:     metadataFlags(),
		Action: func(c *cli.Context) error {
			bookID, err := bookIDArg(c)
			if err != nil {
				return err
			}
			app, session, err := s.session(c)
			if err != nil {
				return err
			}
			current, err := app.Library.Books.GetBook(bookID)
			if err != nil {
				return err
			}
			if current == nil || current.UserID != session.UserID {
				return importers.ErrBookNotFound
			}

			meta := importers.Metadata{
				Title:           current.Title,
				Author:          current.Author,
				PublicationYear: current.PublicationYear,
				CategoryID:      current.CategoryID,
				CoverPath:       c.String("cover"),
			}
			if c.IsSet("title") {
				meta.Title = c.String("title")
			}
			if c.IsSet("author") {
				meta.Author = c.String("author")
			}
			if c.IsSet("year") {
				meta.PublicationYear = c.Int("year")
			}
			if c.IsSet("category") {
				if meta.CategoryID, err = resolveCategory(app, session, c.String("category")); err != nil {
					return err
				}
			}

			view, err := app.Importer.Edit(c.Context, session, bookID, meta)
			if err != nil {
				return err
			}
			s.printBook(c, view)
			return nil
		},
	}
}

func (s *shell) booksCommand() *cli.Command {
	return &cli.Command{
		Name:  "books",
		Usage: "list the library, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "filter by title or author"},
		},
		Action: func(c *cli.Context) error {
			app, session, err := s.session(c)
			if err != nil {
				return err
			}

			var books []entities.BookView
			if q := c.String("search"); q != "" {
				books, err = app.Library.Books.SearchBooks(session.UserID, q)
			} else {
				books, err = app.Library.Books.GetBooks(session.UserID)
			}
			if err != nil {
				return err
			}
			if len(books) == 0 {
				s.printf(c, "No books\n")
				return nil
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tYEAR\tCATEGORY")
			for _, b := range books {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, yearText(b.PublicationYear), categoryText(b.CategoryName))
			}
			return w.Flush()
		},
	}
}

func (s *shell) bookCommand() *cli.Command {
	return &cli.Command{
		Name:      "book",
		Usage:     "show one book",
		ArgsUsage: "<book-id>",
		Action: func(c *cli.Context) error {
			bookID, err := bookIDArg(c)
			if err != nil {
				return err
			}
			app, session, err := s.session(c)
			if err != nil {
				return err
			}
			view, err := app.Library.Books.GetBook(bookID)
			if err != nil {
				return err
			}
			if view == nil || view.UserID != session.UserID {
				return importers.ErrBookNotFound
			}
			s.printBook(c, view)
			return nil
		},
	}
}

func (s *shell) printBook(c *cli.Context, b *entities.BookView) {
	s.printf(c, "#%d %s\n", b.ID, b.Title)
	s.printf(c, "  Author:   %s\n", b.Author)
	s.printf(c, "  Year:     %s\n", yearText(b.PublicationYear))
	s.printf(c, "  Category: %s\n", categoryText(b.CategoryName))
	s.printf(c, "  File:     %s\n", b.FilePath)
	s.printf(c, "  Cover:    %s\n", b.CoverPath)
}

func bookIDArg(c *cli.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Args().First(), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid book id %q", c.Args().First())
	}
	return uint(id), nil
}

func yearText(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func categoryText(name *string) string {
	if name == nil {
		return "-"
	}
	return *name
}
