package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/catalog"
	"github.com/Cossomoj/booksmood/internal/di"
	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/session"
	"github.com/Cossomoj/booksmood/internal/view"
)

func newBrowseCommand(flags *rootFlags) *cobra.Command {
	var categoryID int64

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Show the home screen: featured book, continue listening, new arrivals",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := di.NewContainer(flags.overrides())
			defer func() { _ = injector.Shutdown() }()

			ctx := cmd.Context()
			sess := do.MustInvoke[*session.Manager](injector)
			loader := do.MustInvoke[*catalog.Loader](injector)

			sess.Start(ctx)
			loader.LoadCategories(ctx)
			loader.LoadBooks(ctx, categoryID)

			printHome(cmd, sess, loader)
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "filter by category id (0 = all)")
	return cmd
}

func printHome(cmd *cobra.Command, sess *session.Manager, loader *catalog.Loader) {
	if user := sess.User(); user != nil {
		cmd.Printf("С возвращением, %s!\n\n", user.DisplayName())
	}

	home := view.BuildHome(loader.Books())

	if home.Featured != nil {
		cmd.Println("Книга дня")
		printBook(cmd, home.Featured.Book)
		if home.Featured.Description != "" {
			cmd.Printf("        %s\n", home.Featured.Description)
		}
		cmd.Println()
	}

	if len(home.ContinueListening) > 0 {
		cmd.Println("Продолжить слушать")
		for _, card := range home.ContinueListening {
			printBook(cmd, card.Book)
		}
		cmd.Println()
	}

	if len(home.NewBooks) > 0 {
		cmd.Println("Новинки")
		for _, card := range home.NewBooks {
			printBook(cmd, card.Book)
		}
		cmd.Println()
	}

	if categories := loader.Categories(); len(categories) > 0 {
		cmd.Println("Категории")
		for _, c := range categories {
			cmd.Printf("  %4d  %s\n", c.ID, c.Name)
		}
	}
}

func printBook(cmd *cobra.Command, book domain.Book) {
	line := fmt.Sprintf("  %4d  %s — %s  [%s]", book.ID, book.Title, book.Author, view.FormatDuration(float64(book.DurationSeconds)))
	if book.Started() {
		line += fmt.Sprintf("  %d%%", domain.ProgressPercent(book.Position(), book.DurationSeconds))
	}
	cmd.Println(line)
}
