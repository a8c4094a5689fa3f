package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/app"
	"github.com/Cossomoj/booksmood/internal/di"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/player"
	"github.com/Cossomoj/booksmood/internal/view"
)

func newPlayCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <book-id>",
		Short: "Play an audiobook, resuming from the saved position",
		Long: `Play an audiobook through mpv. Playback resumes from the last saved
position and progress is pushed to the backend while listening.

Controls (type a command and press Enter):
  p            pause / resume
  +, -         seek 30 seconds forward / back
  r            cycle playback speed (0.75x..2x)
  f            toggle favorite
  b [title]    add a bookmark at the current position
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New("book id must be a number")
			}

			injector := di.NewContainer(flags.overrides())
			defer func() { _ = injector.Shutdown() }()

			a := do.MustInvoke[*app.App](injector)
			log := do.MustInvoke[*logger.Logger](injector)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.OnRender(func(s app.Snapshot) { renderStatus(cmd, s) })
			a.Init(ctx)
			if err := a.OpenBook(ctx, bookID); err != nil {
				return err
			}

			go readCommands(ctx, stop, a, log)

			if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			cmd.Println()
			log.Info("Stopping playback")
			return a.Close(context.Background())
		},
	}
	return cmd
}

// renderStatus draws a single status line in place.
func renderStatus(cmd *cobra.Command, s app.Snapshot) {
	if s.Player.Book == nil {
		return
	}

	var state string
	switch s.Player.State {
	case player.StateLoading:
		state = "загрузка"
	case player.StatePlaying:
		state = "►"
	case player.StatePaused:
		state = "⏸"
	case player.StateEnded:
		state = "конец"
	default:
		return
	}

	line := strings.Join([]string{
		state,
		s.Player.Book.Title,
		view.FormatDuration(s.Player.Position) + " / " + view.FormatDuration(s.Player.Duration),
		strconv.FormatFloat(s.Player.Rate, 'g', -1, 64) + "x",
	}, "  ")
	if s.Notification != "" {
		line += "  | " + s.Notification
	}

	cmd.Printf("\r\033[K%s", line)
}

// readCommands drives playback from stdin line commands.
func readCommands(ctx context.Context, stop func(), a *app.App, log *logger.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		cmdWord, rest, _ := strings.Cut(input, " ")

		var err error
		switch cmdWord {
		case "p":
			err = a.Controller().TogglePause()
		case "+":
			err = a.Controller().SeekBy(player.RelativeSeekStep)
		case "-":
			err = a.Controller().SeekBy(-player.RelativeSeekStep)
		case "r":
			_, err = a.Controller().CycleRate()
		case "f":
			err = a.ToggleFavorite(ctx)
		case "b":
			err = a.AddBookmark(ctx, strings.TrimSpace(rest))
		case "q":
			stop()
			return
		case "":
		default:
			log.Warn("unknown command", "input", input)
			continue
		}
		if err != nil {
			log.WithError(err).Warn("command failed", "input", input)
		}
		a.Render()
	}
}
