package main

import (
	"errors"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/di"
	"github.com/Cossomoj/booksmood/internal/session"
	"github.com/Cossomoj/booksmood/internal/view"
)

func newLibraryCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "library",
		Short: "Show listening history, favorites and stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := di.NewContainer(flags.overrides())
			defer func() { _ = injector.Shutdown() }()

			ctx := cmd.Context()
			sess := do.MustInvoke[*session.Manager](injector)
			client := do.MustInvoke[*api.Client](injector)

			sess.Start(ctx)
			if !sess.Authenticated() {
				return errors.New("the library requires an authenticated session")
			}

			library, err := client.Library(ctx)
			if err != nil {
				return err
			}

			cmd.Printf("Книг начато: %d   Прослушано: %d   В избранном: %d   Всего времени: %s\n\n",
				library.Stats.TotalBooks,
				library.Stats.FinishedBooks,
				library.Stats.FavoriteCount,
				view.FormatDuration(float64(library.Stats.TotalTimeSeconds)))

			if len(library.History) > 0 {
				cmd.Println("История")
				for _, item := range library.History {
					marker := ""
					if item.IsFinished {
						marker = "  ✓"
					}
					cmd.Printf("  %4d  %s — %s  %d%%%s\n",
						item.Book.ID, item.Book.Title, item.Book.Author, item.ProgressPercent, marker)
				}
				cmd.Println()
			}

			if len(library.Favorites) > 0 {
				cmd.Println("Избранное")
				for _, book := range library.Favorites {
					printBook(cmd, book)
				}
			}
			return nil
		},
	}
}
