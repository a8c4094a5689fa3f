package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/bookmarks"
	"github.com/Cossomoj/booksmood/internal/di"
	"github.com/Cossomoj/booksmood/internal/session"
	"github.com/Cossomoj/booksmood/internal/view"
)

func newBookmarksCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Manage bookmarks within a book",
	}

	setup := func(cmd *cobra.Command) (*bookmarks.Manager, func(), error) {
		injector := di.NewContainer(flags.overrides())
		shutdown := func() { _ = injector.Shutdown() }

		sess := do.MustInvoke[*session.Manager](injector)
		sess.Start(cmd.Context())
		if !sess.Authenticated() {
			shutdown()
			return nil, nil, errors.New("bookmarks require an authenticated session")
		}
		return do.MustInvoke[*bookmarks.Manager](injector), shutdown, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <book-id>",
			Short: "List bookmarks in a book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				bookID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.New("book id must be a number")
				}

				manager, shutdown, err := setup(cmd)
				if err != nil {
					return err
				}
				defer shutdown()

				if err := manager.Load(cmd.Context(), bookID); err != nil {
					return err
				}
				items := manager.List()
				if len(items) == 0 {
					cmd.Println("Закладок пока нет")
					return nil
				}
				for _, b := range items {
					cmd.Printf("  %4d  %s  %s\n", b.ID, view.FormatDuration(float64(b.Position)), b.Title)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <book-id> <position-seconds> [title...]",
			Short: "Add a bookmark at a position",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				bookID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.New("book id must be a number")
				}
				position, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return errors.New("position must be seconds")
				}

				manager, shutdown, err := setup(cmd)
				if err != nil {
					return err
				}
				defer shutdown()

				bookmark, err := manager.Add(cmd.Context(), bookID, position, strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				cmd.Printf("Закладка добавлена: %s (%s)\n", bookmark.Title, view.FormatDuration(float64(bookmark.Position)))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <bookmark-id>",
			Short: "Delete a bookmark",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				bookmarkID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.New("bookmark id must be a number")
				}

				manager, shutdown, err := setup(cmd)
				if err != nil {
					return err
				}
				defer shutdown()

				manager.Remove(cmd.Context(), bookmarkID)
				cmd.Println("Закладка удалена")
				return nil
			},
		},
	)
	return cmd
}
