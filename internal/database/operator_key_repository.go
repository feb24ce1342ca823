package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// OperatorKeyRepository handles database operations for operator_keys
type OperatorKeyRepository struct {
	db DB
}

// NewOperatorKeyRepository creates a new OperatorKeyRepository
func NewOperatorKeyRepository(db DB) *OperatorKeyRepository {
	return &OperatorKeyRepository{db: db}
}

// Create inserts a freshly generated operator key
func (r *OperatorKeyRepository) Create(key *models.OperatorKey) error {
	if key.ID == "" {
		key.ID = uuid.New().String()
	}

	query := `
		INSERT INTO operator_keys (id, key, created_by)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.QueryRow(query, key.ID, key.Key, key.CreatedBy).Scan(&key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create operator key: %w", err)
	}
	return nil
}

// GetByKey retrieves an operator key by its key value
func (r *OperatorKeyRepository) GetByKey(key string) (*models.OperatorKey, error) {
	query := `
		SELECT id, key, created_by, used_by, used_at, created_at
		FROM operator_keys
		WHERE key = $1
	`

	record := &models.OperatorKey{}
	if err := r.db.Get(record, query, key); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkUsed consumes a key for the given user. Returns an error if the key
// was already consumed (single-use).
func (r *OperatorKeyRepository) MarkUsed(keyID, userID string) error {
	query := `
		UPDATE operator_keys
		SET used_by = $2, used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`

	result, err := r.db.Exec(query, keyID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark operator key used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("operator key already used")
	}
	return nil
}
