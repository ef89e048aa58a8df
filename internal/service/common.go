package service

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/model"
	"Warbler/internal/pkg/kafka"
	"context"
	"errors"
	log "log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// isDuplicateError 唯一约束冲突，gorm 未翻译时回退到 MySQL 1062
func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// isForeignKeyError 外键约束失败，MySQL 对应 1452
func isForeignKeyError(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}

// publish 事务提交后发送事件，失败只记录日志
func publish(ctx context.Context, publisher kafka.Publisher, event *kafka.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.ErrorContext(ctx, "Failed to publish event", "event", event.Name, "err", err)
	}
}

func ToUserDTO(user *model.User) *dto.UserDTO {
	userDTO := &dto.UserDTO{}
	_ = copier.Copy(userDTO, user)
	return userDTO
}

func ToMessageDTO(message *model.Message) *dto.MessageDTO {
	messageDTO := &dto.MessageDTO{}
	_ = copier.Copy(messageDTO, message)
	if message.User != nil {
		messageDTO.Username = message.User.Username
		messageDTO.ImageURL = message.User.ImageURL
	}
	return messageDTO
}

func ToMessageDTOs(messages []*model.Message) []*dto.MessageDTO {
	list := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		list = append(list, ToMessageDTO(m))
	}
	return list
}
