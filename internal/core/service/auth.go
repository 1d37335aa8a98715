package service

import (
	"errors"

	"github.com/spf13/viper"
)

type AdminChecker interface {
	// IsAdmin reports whether the chat is on the configured admin allowlist.
	IsAdmin(chatID int64) bool
}

// Admins holds the admin chat allowlist from config. Command predicates call
// it to gate visibility and enablement of operator commands.
type Admins struct {
	allowlist []int64
}

func NewAdmins() (*Admins, error) {
	var list []int64

	err := viper.UnmarshalKey("telegram.admin_chat_ids", &list)
	if err != nil {
		return nil, errors.New("failed to load admin chat IDs")
	}

	return &Admins{allowlist: list}, nil
}

func (a *Admins) IsAdmin(chatID int64) bool {
	for _, id := range a.allowlist {
		if id == chatID {
			return true
		}
	}

	return false
}
