package domain

import "strings"

// User is the authenticated Telegram user. A nil User means the client is
// running in anonymous mode with progress, bookmarks and favorites disabled.
type User struct {
	ID         int64  `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// DisplayName returns the best available human-readable identity.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "anonymous"
}

// LibraryStats is the aggregate listening statistics from the user library endpoint.
type LibraryStats struct {
	TotalBooks       int `json:"total_books"`
	FinishedBooks    int `json:"finished_books"`
	TotalTimeSeconds int `json:"total_time_seconds"`
	FavoriteCount    int `json:"favorite_count"`
}

// HistoryItem is one entry of the user's listening history.
type HistoryItem struct {
	Book            Book `json:"book"`
	CurrentPosition int  `json:"current_position"`
	ProgressPercent int  `json:"progress_percent"`
	IsFinished      bool `json:"is_finished"`
}

// Library is the full user library: history, favorites and stats.
type Library struct {
	History   []HistoryItem `json:"history"`
	Favorites []Book        `json:"favorites"`
	Stats     LibraryStats  `json:"stats"`
}
