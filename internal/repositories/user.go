package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findajob/jobboard/internal/models"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(user *models.User) error
	CreateProfile(profile *models.Profile) error
	CreateNotificationPreference(pref *models.NotificationPreference) error
	FindByID(id uint) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	AddPreferredCategories(userID uint, categories []models.JobCategory) error
	ReplacePreferredCategories(userID uint, categories []models.JobCategory) error
	FindOrCreateNotificationPreference(userID uint) (*models.NotificationPreference, error)
	SaveNotificationPreference(pref *models.NotificationPreference) error
	FindSubscribers(categoryID uint) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// WithTx implements UserRepository.
func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

// Create implements UserRepository.
func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Omit(clause.Associations).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateProfile implements UserRepository.
func (r *userRepository) CreateProfile(profile *models.Profile) error {
	if err := r.db.Omit("PreferredCategories").Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// CreateNotificationPreference implements UserRepository.
func (r *userRepository) CreateNotificationPreference(pref *models.NotificationPreference) error {
	if err := r.db.Create(pref).Error; err != nil {
		return fmt.Errorf("failed to create notification preference: %w", err)
	}
	return nil
}

func (r *userRepository) withRelations() *gorm.DB {
	return r.db.
		Preload("Company").
		Preload("Profile.PreferredCategories").
		Preload("NotificationPreference")
}

// FindByID implements UserRepository.
func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.withRelations().First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByEmail implements UserRepository.
func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.withRelations().Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// AddPreferredCategories implements UserRepository. Existing preferences are kept.
func (r *userRepository) AddPreferredCategories(userID uint, categories []models.JobCategory) error {
	if len(categories) == 0 {
		return nil
	}

	var profile models.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return fmt.Errorf("failed to find profile: %w", err)
	}

	if err := r.db.Model(&profile).Association("PreferredCategories").Append(categories); err != nil {
		return fmt.Errorf("failed to add preferred categories: %w", err)
	}
	return nil
}

// ReplacePreferredCategories implements UserRepository. An empty set clears
// every preference.
func (r *userRepository) ReplacePreferredCategories(userID uint, categories []models.JobCategory) error {
	var profile models.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return fmt.Errorf("failed to find profile: %w", err)
	}

	association := r.db.Model(&profile).Association("PreferredCategories")
	var err error
	if len(categories) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(categories)
	}
	if err != nil {
		return fmt.Errorf("failed to replace preferred categories: %w", err)
	}
	return nil
}

// FindOrCreateNotificationPreference implements UserRepository. A missing row
// is created with email enabled.
func (r *userRepository) FindOrCreateNotificationPreference(userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.Where(models.NotificationPreference{UserID: userID}).
		Attrs(models.NotificationPreference{EmailEnabled: true}).
		FirstOrCreate(&pref).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notification preference: %w", err)
	}
	return &pref, nil
}

// SaveNotificationPreference implements UserRepository.
func (r *userRepository) SaveNotificationPreference(pref *models.NotificationPreference) error {
	if err := r.db.Save(pref).Error; err != nil {
		return fmt.Errorf("failed to save notification preference: %w", err)
	}
	return nil
}

// FindSubscribers implements UserRepository. It returns active users that
// prefer the category and accept email notifications.
func (r *userRepository) FindSubscribers(categoryID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Preload("Profile").
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Joins("JOIN profile_preferred_categories ON profile_preferred_categories.profile_id = profiles.id").
		Joins("JOIN notification_preferences ON notification_preferences.user_id = users.id").
		Where("users.is_active = ?", true).
		Where("notification_preferences.email_enabled = ?", true).
		Where("profile_preferred_categories.job_category_id = ?", categoryID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find subscribers: %w", err)
	}
	return users, nil
}
