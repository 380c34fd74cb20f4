package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/fileshare-catalog/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByProviderID(ctx context.Context, provider, providerID string) (*models.User, error) {
	var column string
	switch provider {
	case "google":
		column = "google_id"
	case "github":
		column = "github_id"
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, column+" = ?", providerID).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Create inserts the user. A duplicate email yields common.ErrConflict.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}

type GormRefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *GormRefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	rt := &models.RefreshToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(ttl)}
	return translate(r.db.WithContext(ctx).Create(rt).Error)
}

func (r *GormRefreshTokenRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.db.WithContext(ctx).First(&rt, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

func (r *GormRefreshTokenRepository) Delete(ctx context.Context, token string) error {
	return translate(r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error)
}
