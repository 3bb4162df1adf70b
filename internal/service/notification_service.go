package service

import (
	"fmt"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// NotificationService is the read side of exam notifications; the write side
// is the Notifier fan-out.
type NotificationService interface {
	ListUserNotifications(userID uint) ([]dto.NotificationDTO, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListUserNotifications(userID uint) ([]dto.NotificationDTO, error) {
	notifications, err := s.notificationRepo.FindByUserID(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to list notifications")
		return nil, fmt.Errorf("error fetching notifications: %w", err)
	}
	dtos := make([]dto.NotificationDTO, 0, len(notifications))
	if err := copier.Copy(&dtos, notifications); err != nil {
		return nil, fmt.Errorf("error preparing notification response: %w", err)
	}
	return dtos, nil
}
