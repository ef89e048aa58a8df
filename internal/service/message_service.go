package service

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/model"
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/pkg/metrics"
	"Warbler/internal/pkg/util"
	"Warbler/internal/repository"
	"context"
	"fmt"
)

type MessageService interface {
	CreateMessage(ctx context.Context, userID uint64, form *dto.MessageFormDTO) (*model.Message, error)
	GetMessage(ctx context.Context, id uint64) (*model.Message, error)
	ListUserMessages(ctx context.Context, userID uint64, limit int) ([]*model.Message, error)
	Timeline(ctx context.Context, userID uint64, limit int) ([]*model.Message, error)
	DeleteMessage(ctx context.Context, userID, messageID uint64) error
}

type MessageServiceImpl struct {
	userRepo    repository.UserRepo
	messageRepo repository.MessageRepo
	publisher   kafka.Publisher
}

func NewMessageService(userRepo repository.UserRepo, messageRepo repository.MessageRepo, publisher kafka.Publisher) MessageService {
	return &MessageServiceImpl{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		publisher:   publisher,
	}
}

// CreateMessage 时间戳由数据库写入时生成
func (s *MessageServiceImpl) CreateMessage(ctx context.Context, userID uint64, form *dto.MessageFormDTO) (*model.Message, error) {
	if form == nil {
		return nil, ErrParamInvalid
	}
	if err := util.ValidateDTO(form); err != nil {
		return nil, fmt.Errorf("%w %v", ErrParamInvalid, err)
	}

	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	message := &model.Message{Text: form.Text, UserID: userID}
	if err = s.messageRepo.CreateMessage(ctx, message); err != nil {
		if isForeignKeyError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	message.User = user

	metrics.MessagesPosted.Inc()
	publish(ctx, s.publisher, &kafka.Event{
		Name:     kafka.EventMessageCreated,
		ActorID:  userID,
		TargetID: message.ID,
		Payload:  map[string]string{"text": message.Text},
	})
	return message, nil
}

func (s *MessageServiceImpl) GetMessage(ctx context.Context, id uint64) (*model.Message, error) {
	message, err := s.messageRepo.GetMessageById(ctx, id)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}
	return message, nil
}

func (s *MessageServiceImpl) ListUserMessages(ctx context.Context, userID uint64, limit int) ([]*model.Message, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	limit = util.ClampLimit(limit, consts.MessageListLimit, consts.MaxMessageListLimit)
	return s.messageRepo.GetMessagesByUserId(ctx, userID, limit)
}

// Timeline 用户自己与其关注者的最新消息，按时间倒序
func (s *MessageServiceImpl) Timeline(ctx context.Context, userID uint64, limit int) ([]*model.Message, error) {
	limit = util.ClampLimit(limit, consts.MessageListLimit, consts.MaxMessageListLimit)
	return s.messageRepo.GetTimeline(ctx, userID, limit)
}

// DeleteMessage 只有作者本人可以删除
func (s *MessageServiceImpl) DeleteMessage(ctx context.Context, userID, messageID uint64) error {
	message, err := s.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.UserID != userID {
		return UnauthorizedError
	}
	if err = s.messageRepo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}

	publish(ctx, s.publisher, &kafka.Event{
		Name:     kafka.EventMessageDeleted,
		ActorID:  userID,
		TargetID: messageID,
	})
	return nil
}
