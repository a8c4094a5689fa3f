package providers

import (
	"github.com/samber/do/v2"

	"github.com/Cossomoj/booksmood/internal/config"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/media"
	"github.com/Cossomoj/booksmood/internal/media/mpv"
)

// MediaPlayerHandle wraps the media backend with shutdown capability.
type MediaPlayerHandle struct {
	media.Player
}

// Shutdown implements do.Shutdownable.
func (h *MediaPlayerHandle) Shutdown() error {
	return h.Close()
}

// ProvideMediaPlayer provides the mpv-backed media player.
func ProvideMediaPlayer(i do.Injector) (*MediaPlayerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	player, err := mpv.New(cfg.Player.MpvBinary, cfg.Player.MpvSocket, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Media backend ready", "socket", cfg.Player.MpvSocket)
	return &MediaPlayerHandle{Player: player}, nil
}
