package sqlite

import (
	"context"
	"sync"

	"questlink/internal/domain/entity"
	"questlink/internal/domain/repository"
	"questlink/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// credentialRepository implements repository.CredentialRepository.
//
// Reads are served from an in-memory copy so request dispatch never touches
// the database; the copy is refreshed inside the same lock that commits a
// write, which is what makes Save/Clear atomic from a reader's point of view.
type credentialRepository struct {
	db *gorm.DB

	mu      sync.RWMutex
	cred    entity.Credential
	profile entity.UserProfile
	present bool
}

// NewCredentialRepository is the constructor for credentialRepository.
// It warms the cache from disk so a relaunched app resumes its session.
func NewCredentialRepository(db *gorm.DB) (repository.CredentialRepository, error) {
	repo := &credentialRepository{db: db}
	if err := repo.warm(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (repo *credentialRepository) warm() error {
	var credM model.CredentialModel
	err := repo.db.First(&credM, model.SingletonKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load credential")
	}

	var profileM model.UserProfileModel
	if err := repo.db.First(&profileM, model.SingletonKey).Error; err != nil {
		// A credential without its profile means a torn write from an older
		// version; treat the device as logged out rather than half-authenticated.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return errors.Wrap(err, "load profile")
	}

	repo.cred = credM.ToCredentialDomain()
	repo.profile = profileM.ToProfileDomain()
	repo.present = true

	return nil
}

// Load returns the cached credential and profile. Never fails; ok is false
// when the device is logged out.
func (repo *credentialRepository) Load() (entity.Credential, entity.UserProfile, bool) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return repo.cred, repo.profile, repo.present
}

// Save persists credential and profile in one transaction and publishes the
// pair to the cache only after the commit succeeds.
func (repo *credentialRepository) Save(ctx context.Context, cred entity.Credential, profile entity.UserProfile) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model.FromCredentialDomain(cred)).Error; err != nil {
			return errors.Wrap(err, "upsert credential")
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model.FromProfileDomain(profile)).Error; err != nil {
			return errors.Wrap(err, "upsert profile")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "save credential pair")
	}

	repo.cred = cred
	repo.profile = profile
	repo.present = true

	return nil
}

// Clear removes both rows in one transaction. Clearing an empty store is not an error.
func (repo *credentialRepository) Clear(ctx context.Context) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.CredentialModel{}, model.SingletonKey).Error; err != nil {
			return errors.Wrap(err, "delete credential")
		}
		if err := tx.Delete(&model.UserProfileModel{}, model.SingletonKey).Error; err != nil {
			return errors.Wrap(err, "delete profile")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "clear credential pair")
	}

	repo.cred = entity.Credential{}
	repo.profile = entity.UserProfile{}
	repo.present = false

	return nil
}
