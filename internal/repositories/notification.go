package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findajob/jobboard/internal/models"
)

type NotificationRepository interface {
	Create(notification *models.UserNotification) error
	ListByUser(userID uint) ([]models.UserNotification, error)
	MarkRead(id, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create implements NotificationRepository.
func (r *notificationRepository) Create(notification *models.UserNotification) error {
	if err := r.db.Omit(clause.Associations).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser implements NotificationRepository.
func (r *notificationRepository) ListByUser(userID uint) ([]models.UserNotification, error) {
	var notifications []models.UserNotification
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead implements NotificationRepository.
func (r *notificationRepository) MarkRead(id, userID uint) error {
	result := r.db.Model(&models.UserNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

type WishlistRepository interface {
	Toggle(userID, jobID uint) (bool, error)
	ListByUser(userID uint) ([]models.Wishlist, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Toggle implements WishlistRepository. It reports whether the job is saved afterwards.
func (r *wishlistRepository) Toggle(userID, jobID uint) (bool, error) {
	var saved bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Wishlist
		err := tx.Where("user_id = ? AND job_id = ?", userID, jobID).First(&existing).Error
		if err == nil {
			saved = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		saved = true
		return tx.Omit(clause.Associations).Create(&models.Wishlist{UserID: userID, JobID: jobID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle wishlist: %w", err)
	}
	return saved, nil
}

// ListByUser implements WishlistRepository.
func (r *wishlistRepository) ListByUser(userID uint) ([]models.Wishlist, error) {
	var items []models.Wishlist
	err := r.db.
		Preload("Job.Category").
		Preload("Job.Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}
