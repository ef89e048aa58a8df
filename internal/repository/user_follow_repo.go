package repository

import (
	"Warbler/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserFollowRepo interface {
	GetUserFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.User, error)
	GetUserFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.User, error)
	GetUserFollowingIds(ctx context.Context, userID uint64) ([]uint64, error)
	GetUserFollowerCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollow(ctx context.Context, followerID uint64, followedID uint64) (*model.Follow, error)
	CreateUserFollow(ctx context.Context, follow *model.Follow) error
	DeleteUserFollow(ctx context.Context, follow *model.Follow) (int64, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

// GetUserFollowers 获取关注了 userID 的用户
func (s *UserFollowRepoImpl) GetUserFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.User, error) {
	return s.listUsers(ctx, "follows.follower_id = users.id AND follows.followed_id = ?", userID, limit, offset)
}

// GetUserFollowing 获取 userID 关注的用户
func (s *UserFollowRepoImpl) GetUserFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.User, error) {
	return s.listUsers(ctx, "follows.followed_id = users.id AND follows.follower_id = ?", userID, limit, offset)
}

func (s *UserFollowRepoImpl) listUsers(ctx context.Context, on string, userID uint64, limit, offset int) ([]*model.User, error) {
	users := make([]*model.User, 0)
	db := s.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN follows ON "+on, userID).
		Order("users.id asc")
	if limit > 0 {
		db = db.Limit(limit).Offset(offset)
	}
	if result := db.Find(&users); result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserFollowRepoImpl) GetUserFollowingIds(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	result := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// GetUserFollowerCount 获取用户的粉丝数量
func (s *UserFollowRepoImpl) GetUserFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("followed_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetUserFollowingCount 获取用户的关注数量
func (s *UserFollowRepoImpl) GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetUserFollow 获取关注关系，不存在时返回 nil
func (s *UserFollowRepoImpl) GetUserFollow(ctx context.Context, followerID uint64, followedID uint64) (*model.Follow, error) {
	var follow model.Follow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &follow, nil
}

// CreateUserFollow 创建关注关系，重复时返回 gorm.ErrDuplicatedKey
func (s *UserFollowRepoImpl) CreateUserFollow(ctx context.Context, follow *model.Follow) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(follow).Error
	})
}

// DeleteUserFollow 删除关注关系，返回受影响行数
func (s *UserFollowRepoImpl) DeleteUserFollow(ctx context.Context, follow *model.Follow) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Delete(&model.Follow{})
	return result.RowsAffected, result.Error
}
