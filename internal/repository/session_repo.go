package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docchat/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) FindByUserID(ctx context.Context, userID string) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// Upsert inserts the session or, when the session ID already exists, updates
// title, messages and updated_at in place.
func (r *SessionRepository) Upsert(ctx context.Context, session *model.ChatSession) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "messages", "updated_at"}),
	}).Create(session).Error
}

// Delete removes a session only when it belongs to userID; a cross-user
// delete matches no rows and is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, userID, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&model.ChatSession{}).Error
}
