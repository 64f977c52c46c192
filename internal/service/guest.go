package service

import (
	"strconv"

	"github.com/pribylovaa/gamehub-auth/internal/models"
)

const (
	guestNickname = "游客"
	guestRole     = "GUEST"
)

// newGuestInfo создаёт нового гостя. Гость нигде не сохраняется.
func (s *Service) newGuestInfo() *models.UserInfo {
	return guestInfo("guest_" + strconv.FormatInt(s.now().UnixNano(), 10))
}

func guestInfo(username string) *models.UserInfo {
	return &models.UserInfo{
		ID:       models.GuestSubjectID,
		Username: username,
		Nickname: guestNickname,
		Roles:    []string{guestRole},
		Guest:    true,
	}
}
