package main

import (
	"errors"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/di"
	"github.com/Cossomoj/booksmood/internal/favorites"
	"github.com/Cossomoj/booksmood/internal/session"
)

func newFavoritesCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite books or toggle one",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite books",
			RunE: func(cmd *cobra.Command, args []string) error {
				injector := di.NewContainer(flags.overrides())
				defer func() { _ = injector.Shutdown() }()

				ctx := cmd.Context()
				sess := do.MustInvoke[*session.Manager](injector)
				fav := do.MustInvoke[*favorites.Favorites](injector)

				sess.Start(ctx)
				if !sess.Authenticated() {
					return errors.New("favorites require an authenticated session")
				}

				books, err := fav.List(ctx, 0)
				if err != nil {
					return err
				}
				if len(books) == 0 {
					cmd.Println("В избранном пока пусто")
					return nil
				}
				for _, book := range books {
					printBook(cmd, book)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <book-id>",
			Short: "Add a book to favorites, or remove it if already there",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				bookID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.New("book id must be a number")
				}

				injector := di.NewContainer(flags.overrides())
				defer func() { _ = injector.Shutdown() }()

				ctx := cmd.Context()
				sess := do.MustInvoke[*session.Manager](injector)
				fav := do.MustInvoke[*favorites.Favorites](injector)

				sess.Start(ctx)
				if !sess.Authenticated() {
					return errors.New("favorites require an authenticated session")
				}

				favored, err := fav.Toggle(ctx, bookID)
				if err != nil {
					return err
				}
				if favored {
					cmd.Println("Добавлено в избранное")
				} else {
					cmd.Println("Удалено из избранного")
				}
				return nil
			},
		},
	)
	return cmd
}
