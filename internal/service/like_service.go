package service

import (
	"Warbler/internal/model"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/repository"
	"context"
)

type LikeService interface {
	ToggleLike(ctx context.Context, userID, messageID uint64) (bool, error)
	ListLikedMessages(ctx context.Context, userID uint64) ([]*model.Message, error)
	LikedMessageIDs(ctx context.Context, userID uint64) (map[uint64]bool, error)
}

type LikeServiceImpl struct {
	userRepo    repository.UserRepo
	messageRepo repository.MessageRepo
	likeRepo    repository.LikeRepo
	publisher   kafka.Publisher
}

func NewLikeService(
	userRepo repository.UserRepo,
	messageRepo repository.MessageRepo,
	likeRepo repository.LikeRepo,
	publisher kafka.Publisher,
) LikeService {
	return &LikeServiceImpl{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		publisher:   publisher,
	}
}

// ToggleLike 未点赞则点赞，已点赞则取消，返回操作后的状态
func (s *LikeServiceImpl) ToggleLike(ctx context.Context, userID, messageID uint64) (bool, error) {
	message, err := s.messageRepo.GetMessageById(ctx, messageID)
	if err != nil {
		return false, err
	}
	if message == nil {
		return false, ErrMessageNotFound
	}
	if message.UserID == userID {
		return false, ErrLikeOwnMessage
	}

	like := &model.Like{UserID: userID, MessageID: messageID}
	liked, err := s.likeRepo.IsLiked(ctx, userID, messageID)
	if err != nil {
		return false, err
	}

	if liked {
		rows, err := s.likeRepo.DeleteLike(ctx, like)
		if err != nil {
			return false, err
		}
		if rows > 0 {
			publish(ctx, s.publisher, &kafka.Event{Name: kafka.EventMessageUnliked, ActorID: userID, TargetID: messageID})
		}
		return false, nil
	}

	if err = s.likeRepo.CreateLike(ctx, like); err != nil {
		switch {
		case isDuplicateError(err):
			// 并发请求已经点过赞
			return true, nil
		case isForeignKeyError(err):
			return false, ErrMessageNotFound
		}
		return false, err
	}
	publish(ctx, s.publisher, &kafka.Event{Name: kafka.EventMessageLiked, ActorID: userID, TargetID: messageID})
	return true, nil
}

func (s *LikeServiceImpl) ListLikedMessages(ctx context.Context, userID uint64) ([]*model.Message, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.likeRepo.GetLikedMessages(ctx, userID, 0)
}

// LikedMessageIDs 返回用户点过赞的消息 ID 集合，供页面标记点赞状态
func (s *LikeServiceImpl) LikedMessageIDs(ctx context.Context, userID uint64) (map[uint64]bool, error) {
	ids, err := s.likeRepo.GetLikedMessageIds(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
