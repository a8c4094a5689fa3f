package main

import (
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/catalog"
	"github.com/Cossomoj/booksmood/internal/di"
	"github.com/Cossomoj/booksmood/internal/session"
)

func newSearchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by title or author",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := di.NewContainer(flags.overrides())
			defer func() { _ = injector.Shutdown() }()

			ctx := cmd.Context()
			sess := do.MustInvoke[*session.Manager](injector)
			loader := do.MustInvoke[*catalog.Loader](injector)

			sess.Start(ctx)
			loader.SubmitSearch(ctx, strings.Join(args, " "))

			books := loader.Books()
			if len(books) == 0 {
				cmd.Println("Ничего не найдено")
				return nil
			}

			cmd.Printf("Найдено: %d\n", loader.Total())
			for _, book := range books {
				printBook(cmd, book)
			}
			return nil
		},
	}
}
