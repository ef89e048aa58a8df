package repository

import (
	"Warbler/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type MessageRepo interface {
	GetMessageById(ctx context.Context, id uint64) (*model.Message, error)
	GetMessagesByUserId(ctx context.Context, userID uint64, limit int) ([]*model.Message, error)
	GetTimeline(ctx context.Context, userID uint64, limit int) ([]*model.Message, error)
	GetMessageCount(ctx context.Context, userID uint64) (int64, error)
	CreateMessage(ctx context.Context, message *model.Message) error
	DeleteMessage(ctx context.Context, id uint64) error
}

type MessageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &MessageRepoImpl{db: db}
}

func (s *MessageRepoImpl) GetMessageById(ctx context.Context, id uint64) (*model.Message, error) {
	message := &model.Message{}
	result := s.db.WithContext(ctx).
		Preload("User").
		First(message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return message, nil
}

// GetMessagesByUserId 获取用户最新的消息，按时间倒序
func (s *MessageRepoImpl) GetMessagesByUserId(ctx context.Context, userID uint64, limit int) ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	result := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Order("id desc").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// GetTimeline 获取用户自己及其关注者的最新消息
func (s *MessageRepoImpl) GetTimeline(ctx context.Context, userID uint64, limit int) ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	following := s.db.Model(&model.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	result := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, following).
		Order("timestamp desc").
		Order("id desc").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

func (s *MessageRepoImpl) GetMessageCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *MessageRepoImpl) CreateMessage(ctx context.Context, message *model.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User").Create(message).Error
	})
}

// DeleteMessage 删除消息及其点赞
func (s *MessageRepoImpl) DeleteMessage(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("message_id = ?", id).Delete(&model.Like{}); result.Error != nil {
			return result.Error
		}
		return tx.Delete(&model.Message{}, id).Error
	})
}
