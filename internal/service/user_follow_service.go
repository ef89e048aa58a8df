package service

import (
	"Warbler/internal/model"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/pkg/metrics"
	"Warbler/internal/repository"
	"context"
)

type UserFollowService interface {
	Follow(ctx context.Context, followerID, followedID uint64) error
	Unfollow(ctx context.Context, followerID, followedID uint64) error
	IsFollowing(ctx context.Context, followerID, followedID uint64) (bool, error)
	ListFollowing(ctx context.Context, userID uint64) ([]*model.User, error)
	ListFollowers(ctx context.Context, userID uint64) ([]*model.User, error)
	GetFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetFollowerCount(ctx context.Context, userID uint64) (int64, error)
}

type UserFollowServiceImpl struct {
	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
	publisher      kafka.Publisher
}

func NewUserFollowService(userRepo repository.UserRepo, userFollowRepo repository.UserFollowRepo, publisher kafka.Publisher) UserFollowService {
	return &UserFollowServiceImpl{
		userRepo:       userRepo,
		userFollowRepo: userFollowRepo,
		publisher:      publisher,
	}
}

func (s *UserFollowServiceImpl) Follow(ctx context.Context, followerID, followedID uint64) error {
	if followerID == followedID {
		return ErrUserFollowSelf
	}

	users, err := s.userRepo.GetUserByIds(ctx, []uint64{followerID, followedID})
	if err != nil {
		return err
	}
	if len(users) != 2 {
		return ErrUserNotFound
	}

	isFollowing, err := s.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if isFollowing {
		return ErrUserFollowExist
	}

	err = s.userFollowRepo.CreateUserFollow(ctx, &model.Follow{FollowerID: followerID, FollowedID: followedID})
	if err != nil {
		switch {
		case isDuplicateError(err):
			return ErrUserFollowExist
		case isForeignKeyError(err):
			return ErrUserNotFound
		}
		return err
	}

	metrics.FollowsChanged.WithLabelValues("follow").Inc()
	publish(ctx, s.publisher, &kafka.Event{
		Name:     kafka.EventUserFollowed,
		ActorID:  followerID,
		TargetID: followedID,
	})
	return nil
}

// Unfollow 关系不存在时直接返回成功
func (s *UserFollowServiceImpl) Unfollow(ctx context.Context, followerID, followedID uint64) error {
	rows, err := s.userFollowRepo.DeleteUserFollow(ctx, &model.Follow{FollowerID: followerID, FollowedID: followedID})
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	metrics.FollowsChanged.WithLabelValues("unfollow").Inc()
	publish(ctx, s.publisher, &kafka.Event{
		Name:     kafka.EventUserUnfollowed,
		ActorID:  followerID,
		TargetID: followedID,
	})
	return nil
}

func (s *UserFollowServiceImpl) IsFollowing(ctx context.Context, followerID, followedID uint64) (bool, error) {
	follow, err := s.userFollowRepo.GetUserFollow(ctx, followerID, followedID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

func (s *UserFollowServiceImpl) ListFollowing(ctx context.Context, userID uint64) ([]*model.User, error) {
	if err := s.mustExist(ctx, userID); err != nil {
		return nil, err
	}
	return s.userFollowRepo.GetUserFollowing(ctx, userID, 0, 0)
}

func (s *UserFollowServiceImpl) ListFollowers(ctx context.Context, userID uint64) ([]*model.User, error) {
	if err := s.mustExist(ctx, userID); err != nil {
		return nil, err
	}
	return s.userFollowRepo.GetUserFollowers(ctx, userID, 0, 0)
}

func (s *UserFollowServiceImpl) GetFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	return s.userFollowRepo.GetUserFollowingCount(ctx, userID)
}

func (s *UserFollowServiceImpl) GetFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	return s.userFollowRepo.GetUserFollowerCount(ctx, userID)
}

func (s *UserFollowServiceImpl) mustExist(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
