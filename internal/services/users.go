package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

type NewUser struct {
	Email     string
	Role      models.Role
	FullName  *string
	Phone     *string
	CompanyID *uint
	// EmailNotifications defaults to enabled.
	EmailNotifications *bool
}

type UserService interface {
	CreateUser(ctx context.Context, in NewUser) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	SetPreferredCategories(ctx context.Context, userID uint, categoryIDs []uint) (*models.User, error)
	SetNotificationChannel(ctx context.Context, userID uint, channel string, enabled *bool) (*models.NotificationPreference, error)
}

const (
	ChannelEmail    = "email"
	ChannelWhatsapp = "whatsapp"
)

type userService struct {
	db           *gorm.DB
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
	logger       *zap.Logger
}

func NewUserService(db *gorm.DB, userRepo repositories.UserRepository, categoryRepo repositories.CategoryRepository, log *zap.Logger) UserService {
	return &userService{db: db, userRepo: userRepo, categoryRepo: categoryRepo, logger: logger.OrNop(log)}
}

func validRole(r models.Role) bool {
	for _, known := range models.AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// CreateUser implements UserService. The profile and notification preference
// are created in the same transaction as the user.
func (s *userService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidArgument, in.Email)
	}
	if in.Role == "" {
		in.Role = models.RoleJobSeeker
	}
	if !validRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, in.Role)
	}

	emailEnabled := true
	if in.EmailNotifications != nil {
		emailEnabled = *in.EmailNotifications
	}

	user := &models.User{
		Email:     email,
		Role:      in.Role,
		IsActive:  true,
		CompanyID: in.CompanyID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		if err := users.Create(user); err != nil {
			return err
		}
		if err := users.CreateProfile(&models.Profile{UserID: user.ID, FullName: in.FullName, PhonePrimary: in.Phone}); err != nil {
			return err
		}
		return users.CreateNotificationPreference(&models.NotificationPreference{UserID: user.ID, EmailEnabled: emailEnabled})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Uint(logger.FieldUserID, user.ID), zap.String("role", string(user.Role)))
	return s.userRepo.FindByID(user.ID)
}

// FindByID implements UserService.
func (s *userService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// SetPreferredCategories implements UserService. The new set replaces the old
// one; every id must name an existing category.
func (s *userService) SetPreferredCategories(ctx context.Context, userID uint, categoryIDs []uint) (*models.User, error) {
	seen := make(map[uint]bool, len(categoryIDs))
	ids := make([]uint, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	categories, err := s.categoryRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, fmt.Errorf("%w: unknown category in %v", ErrInvalidArgument, ids)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).ReplacePreferredCategories(userID, categories)
	})
	if err != nil {
		return nil, notFound(err)
	}

	s.logger.Info("preferred categories updated", zap.Uint(logger.FieldUserID, userID), zap.Int("count", len(categories)))
	return s.userRepo.FindByID(userID)
}

// SetNotificationChannel implements UserService. An empty channel means
// email, and a nil enabled flips the current setting.
func (s *userService) SetNotificationChannel(ctx context.Context, userID uint, channel string, enabled *bool) (*models.NotificationPreference, error) {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		channel = ChannelEmail
	}
	if channel != ChannelEmail && channel != ChannelWhatsapp {
		return nil, fmt.Errorf("%w: unknown notification channel %q", ErrInvalidArgument, channel)
	}

	users := s.userRepo.WithTx(s.db.WithContext(ctx))
	pref, err := users.FindOrCreateNotificationPreference(userID)
	if err != nil {
		return nil, err
	}

	target := &pref.EmailEnabled
	if channel == ChannelWhatsapp {
		target = &pref.WhatsappEnabled
	}
	if enabled != nil {
		*target = *enabled
	} else {
		*target = !*target
	}

	if err := users.SaveNotificationPreference(pref); err != nil {
		return nil, err
	}
	s.logger.Info("notification preference updated",
		zap.Uint(logger.FieldUserID, userID),
		zap.String("channel", channel),
		zap.Bool("enabled", *target))
	return pref, nil
}
