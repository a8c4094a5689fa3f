package main

import (
	"github.com/spf13/cobra"

	"github.com/Cossomoj/booksmood/internal/config"
)

// rootFlags collects the persistent flags shared by every subcommand.
type rootFlags struct {
	environment string
	logLevel    string
	apiBaseURL  string
	stateDir    string
	envFile     string
	mpvSocket   string
	mpvBinary   string
	deviceName  string
}

func (f *rootFlags) overrides() config.Overrides {
	return config.Overrides{
		Environment: f.environment,
		LogLevel:    f.logLevel,
		APIBaseURL:  f.apiBaseURL,
		StateDir:    f.stateDir,
		EnvFile:     f.envFile,
		MpvSocket:   f.mpvSocket,
		MpvBinary:   f.mpvBinary,
		DeviceName:  f.deviceName,
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "booksmood",
		Short: "BooksMood audiobook listening client",
		Long:  "Browse the BooksMood catalog, play audiobooks through mpv and keep listening progress in sync.",
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.environment, "env", "", "environment (development, staging, production)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.apiBaseURL, "api", "", "backend API base URL")
	pf.StringVar(&flags.stateDir, "state-dir", "", "local state directory")
	pf.StringVar(&flags.envFile, "env-file", "", "path to a .env file")
	pf.StringVar(&flags.mpvSocket, "mpv-socket", "", "mpv JSON-IPC socket path")
	pf.StringVar(&flags.mpvBinary, "mpv-binary", "", "mpv executable override")
	pf.StringVar(&flags.deviceName, "device-name", "", "device name reported to the backend")

	cmd.AddCommand(
		newBrowseCommand(flags),
		newSearchCommand(flags),
		newPlayCommand(flags),
		newFavoritesCommand(flags),
		newBookmarksCommand(flags),
		newLibraryCommand(flags),
	)
	return cmd
}
