package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

func (s *shell) wishlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "wishlist",
		Usage: "books you want to get",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a book to the wishlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "author"},
					&cli.StringFlag{Name: "isbn"},
					&cli.StringFlag{Name: "cover-url", Usage: "remote image URL or local path"},
				},
				Action: func(c *cli.Context) error {
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					entry := catalog.Entry{
						Title:    strings.TrimSpace(c.String("title")),
						Author:   strings.TrimSpace(c.String("author")),
						ISBN:     strings.TrimSpace(c.String("isbn")),
						CoverURL: c.String("cover-url"),
					}
					if entry.Title == "" {
						return errors.New("title is required")
					}
					return s.addToWishlist(c, app, session, entry)
				},
			},
			{
				Name:  "list",
				Usage: "list the wishlist, newest first",
				Action: func(c *cli.Context) error {
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					entries, err := app.Library.Wishlist.GetWishlist(session.UserID)
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						s.printf(c, "Wishlist is empty\n")
						return nil
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "TITLE\tAUTHOR\tISBN\tADDED")
					for _, e := range entries {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Title, e.Author, e.ISBN, e.AddedDate.Format("2006-01-02"))
					}
					return w.Flush()
				},
			},
			{
				Name:  "remove",
				Usage: "remove a book from the wishlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "author"},
				},
				Action: func(c *cli.Context) error {
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					if err := app.Library.Wishlist.RemoveFromWishlist(session.UserID, c.String("title"), c.String("author")); err != nil {
						return err
					}
					s.printf(c, "Removed %q from the wishlist\n", c.String("title"))
					return nil
				},
			},
			{
				Name:      "search",
				Usage:     "search the online catalog",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10},
					&cli.IntFlag{Name: "add", Usage: "add the result with this number to the wishlist"},
				},
				Action: func(c *cli.Context) error {
					app, session, err := s.session(c)
					if err != nil {
						return err
					}
					entries, err := app.Catalog.Search(c.Context, strings.Join(c.Args().Slice(), " "), c.Int("limit"))
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						s.printf(c, "Nothing found\n")
						return nil
					}

					if n := c.Int("add"); n != 0 {
						if n < 1 || n > len(entries) {
							return fmt.Errorf("--add must be between 1 and %d", len(entries))
						}
						return s.addToWishlist(c, app, session, entries[n-1])
					}

					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "#\tTITLE\tAUTHOR\tYEAR\tRATING\tGENRE")
					for i, e := range entries {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%s\n", i+1, e.Title, e.Author, yearText(e.Year), e.Rating, e.Genre)
					}
					return w.Flush()
				},
			},
		},
	}
}

// addToWishlist stores entry, downloading a remote cover into the local
// cache first. A cover that cannot be downloaded keeps its URL.
func (s *shell) addToWishlist(c *cli.Context, app *entrypoint.App, session *auth.Session, entry catalog.Entry) error {
	cover := entry.CoverURL
	if covers.IsRemote(cover) {
		local, err := app.Covers.Fetch(c.Context, cover)
		if err != nil {
			s.logger.Warn("failed to cache cover", zap.String("url", cover), zap.Error(err))
		} else {
			cover = local
		}
	}

	if _, err := app.Library.Wishlist.AddToWishlist(session.UserID, entry.Title, entry.Author, entry.ISBN, cover); err != nil {
		return err
	}
	s.printf(c, "Added %q to the wishlist\n", entry.Title)
	return nil
}
