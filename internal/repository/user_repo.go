package repository

import (
	"Warbler/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	CreateUsers(ctx context.Context, users []*model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

// GetUserById 用户不存在时返回 nil, nil
func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *UserRepoImpl) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0)
	if len(ids) == 0 {
		return users, nil
	}
	result := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserRepoImpl) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserBy(ctx, "username", username)
}

func (s *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *UserRepoImpl) getUserBy(ctx context.Context, column string, value any) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Where(column+" = ?", value).
		First(user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return user, nil
}

// likeEscaper 转义 LIKE 通配符；'!' 在 mysql/postgres/sqlite 中都无需再转义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchUsers 按用户名模糊搜索，query 为空时返回全部用户
func (s *UserRepoImpl) SearchUsers(ctx context.Context, query string, limit int) ([]*model.User, error) {
	users := make([]*model.User, 0)
	db := s.db.WithContext(ctx).Order("id asc")
	if query != "" {
		db = db.Where("username LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(query)+"%")
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if result := db.Find(&users); result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

// CreateUsers 在同一事务中插入多个用户，任一失败则全部回滚
func (s *UserRepoImpl) CreateUsers(ctx context.Context, users []*model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			if result := tx.Create(user); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}

func (s *UserRepoImpl) UpdateUser(ctx context.Context, user *model.User) error {
	fields := []string{"username", "email", "image_url", "header_image_url", "bio", "location"}
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Select(fields).
		Updates(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteUser 删除用户及其消息、关注关系和点赞
func (s *UserRepoImpl) DeleteUser(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownMessages := tx.Model(&model.Message{}).Select("id").Where("user_id = ?", id)
		result := tx.Where("user_id = ? OR message_id IN (?)", id, ownMessages).Delete(&model.Like{})
		if result.Error != nil {
			return result.Error
		}

		result = tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&model.Follow{})
		if result.Error != nil {
			return result.Error
		}

		result = tx.Where("user_id = ?", id).Delete(&model.Message{})
		if result.Error != nil {
			return result.Error
		}

		return tx.Delete(&model.User{}, id).Error
	})
}
