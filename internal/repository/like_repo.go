package repository

import (
	"Warbler/internal/model"
	"context"

	"gorm.io/gorm"
)

type LikeRepo interface {
	IsLiked(ctx context.Context, userID, messageID uint64) (bool, error)
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, like *model.Like) (int64, error)
	GetLikedMessages(ctx context.Context, userID uint64, limit int) ([]*model.Message, error)
	GetLikedMessageIds(ctx context.Context, userID uint64) ([]uint64, error)
	GetLikeCount(ctx context.Context, userID uint64) (int64, error)
}

type LikeRepoImpl struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) LikeRepo {
	return &LikeRepoImpl{db: db}
}

func (s *LikeRepoImpl) IsLiked(ctx context.Context, userID, messageID uint64) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (s *LikeRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(like).Error
	})
}

func (s *LikeRepoImpl) DeleteLike(ctx context.Context, like *model.Like) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", like.UserID, like.MessageID).
		Delete(&model.Like{})
	return result.RowsAffected, result.Error
}

// GetLikedMessages 获取用户点赞过的消息，按消息时间倒序
func (s *LikeRepoImpl) GetLikedMessages(ctx context.Context, userID uint64, limit int) ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	db := s.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id AND likes.user_id = ?", userID).
		Order("messages.timestamp desc").
		Order("messages.id desc")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if result := db.Find(&messages); result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

func (s *LikeRepoImpl) GetLikedMessageIds(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	result := s.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

func (s *LikeRepoImpl) GetLikeCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
