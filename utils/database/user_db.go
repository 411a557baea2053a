package database

import (
	"fmt"
	"time"

	"modguard/model"

	"github.com/jmoiron/sqlx"
)

// UpsertUser creates or refreshes a dashboard user after an OAuth login.
func UpsertUser(db *sqlx.DB, user *model.User) error {
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (id, username, avatar, access_token, refresh_token, created_at, updated_at)
	          VALUES (:id, :username, :avatar, :access_token, :refresh_token, :created_at, :updated_at)
	          ON CONFLICT(id) DO UPDATE SET
	              username = excluded.username,
	              avatar = excluded.avatar,
	              access_token = excluded.access_token,
	              refresh_token = excluded.refresh_token,
	              updated_at = excluded.updated_at`
	if _, err := db.NamedExec(query, user); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser returns the stored dashboard user, or (nil, nil) if unknown.
func GetUser(db *sqlx.DB, userID string) (*model.User, error) {
	var user model.User
	if err := db.Get(&user, `SELECT * FROM users WHERE id = ?`, userID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}
