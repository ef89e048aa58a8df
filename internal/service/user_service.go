package service

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/model"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/pkg/metrics"
	"Warbler/internal/pkg/security"
	"Warbler/internal/pkg/util"
	"Warbler/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

type UserService interface {
	Signup(form *dto.SignupDTO) (*model.User, error)
	Register(ctx context.Context, form *dto.SignupDTO) (*model.User, error)
	RegisterBatch(ctx context.Context, forms []*dto.SignupDTO) ([]*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	IsFollowing(ctx context.Context, userID, otherID uint64) (bool, error)
	IsFollowedBy(ctx context.Context, userID, otherID uint64) (bool, error)
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	ListUsers(ctx context.Context, search string) ([]*model.User, error)
	GetProfile(ctx context.Context, id uint64) (*dto.ProfileInfoDTO, error)
	UpdateProfile(ctx context.Context, id uint64, form *dto.ProfileDTO) (*model.User, error)
	DeleteUser(ctx context.Context, id uint64) error
}

type UserServiceImpl struct {
	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
	messageRepo    repository.MessageRepo
	likeRepo       repository.LikeRepo
	publisher      kafka.Publisher
}

func NewUserService(
	userRepo repository.UserRepo,
	userFollowRepo repository.UserFollowRepo,
	messageRepo repository.MessageRepo,
	likeRepo repository.LikeRepo,
	publisher kafka.Publisher,
) UserService {
	return &UserServiceImpl{
		userRepo:       userRepo,
		userFollowRepo: userFollowRepo,
		messageRepo:    messageRepo,
		likeRepo:       likeRepo,
		publisher:      publisher,
	}
}

// Signup 校验表单并构造一个未持久化的用户，密码已哈希
func (s *UserServiceImpl) Signup(form *dto.SignupDTO) (*model.User, error) {
	if form == nil {
		return nil, ErrParamInvalid
	}
	if strings.TrimSpace(form.Email) == "" {
		return nil, ErrUserEmailRequired
	}
	if err := util.ValidateDTO(form); err != nil {
		return nil, fmt.Errorf("%w %v", ErrParamInvalid, err)
	}

	user := &model.User{}
	if err := copier.Copy(user, form); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}
	user.Password = passwordHash

	if user.ImageURL == "" {
		user.ImageURL = model.DefaultImageURL
	}
	user.HeaderImageURL = model.DefaultHeaderImageURL

	return user, nil
}

func (s *UserServiceImpl) Register(ctx context.Context, form *dto.SignupDTO) (*model.User, error) {
	user, err := s.Signup(form)
	if err != nil {
		return nil, err
	}
	if err = s.checkUnique(ctx, user.Username, user.Email); err != nil {
		return nil, err
	}

	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		if isDuplicateError(err) {
			return nil, ErrUserExist
		}
		return nil, err
	}

	metrics.SignupSuccess.Inc()
	publish(ctx, s.publisher, &kafka.Event{
		Name:    kafka.EventUserSignedUp,
		ActorID: user.ID,
		Payload: map[string]string{"username": user.Username},
	})
	return user, nil
}

// RegisterBatch 多个注册在同一事务内提交，任一冲突全部回滚
func (s *UserServiceImpl) RegisterBatch(ctx context.Context, forms []*dto.SignupDTO) ([]*model.User, error) {
	if len(forms) == 0 {
		return []*model.User{}, nil
	}

	users := make([]*model.User, 0, len(forms))
	usernames := make(map[string]struct{}, len(forms))
	emails := make(map[string]struct{}, len(forms))
	for _, form := range forms {
		user, err := s.Signup(form)
		if err != nil {
			return nil, err
		}
		if _, ok := usernames[user.Username]; ok {
			return nil, ErrUserUsernameExist
		}
		if _, ok := emails[user.Email]; ok {
			return nil, ErrUserEmailExist
		}
		usernames[user.Username] = struct{}{}
		emails[user.Email] = struct{}{}

		if err = s.checkUnique(ctx, user.Username, user.Email); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := s.userRepo.CreateUsers(ctx, users); err != nil {
		if isDuplicateError(err) {
			return nil, ErrUserExist
		}
		return nil, err
	}

	for _, user := range users {
		metrics.SignupSuccess.Inc()
		publish(ctx, s.publisher, &kafka.Event{
			Name:    kafka.EventUserSignedUp,
			ActorID: user.ID,
			Payload: map[string]string{"username": user.Username},
		})
	}
	return users, nil
}

// Authenticate 用户名与密码匹配时返回用户，否则返回 nil, nil
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		security.CheckDummyHash(password)
		metrics.LoginFailure.Inc()
		return nil, nil
	}

	if err = security.CheckPasswordHash(password, user.Password); err != nil {
		if !errors.Is(err, security.ErrInvalidCredentials) {
			log.WarnContext(ctx, "Stored password hash is unusable", "user_id", user.ID, "err", err)
		}
		metrics.LoginFailure.Inc()
		return nil, nil
	}

	metrics.LoginSuccess.Inc()
	return user, nil
}

// IsFollowing userID 是否关注了 otherID
func (s *UserServiceImpl) IsFollowing(ctx context.Context, userID, otherID uint64) (bool, error) {
	follow, err := s.userFollowRepo.GetUserFollow(ctx, userID, otherID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

// IsFollowedBy otherID 是否关注了 userID
func (s *UserServiceImpl) IsFollowedBy(ctx context.Context, userID, otherID uint64) (bool, error) {
	return s.IsFollowing(ctx, otherID, userID)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, search string) ([]*model.User, error) {
	return s.userRepo.SearchUsers(ctx, strings.TrimSpace(search), 0)
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, id uint64) (*dto.ProfileInfoDTO, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &dto.ProfileInfoDTO{UserDTO: *ToUserDTO(user)}
	if profile.MessageCount, err = s.messageRepo.GetMessageCount(ctx, id); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.userFollowRepo.GetUserFollowingCount(ctx, id); err != nil {
		return nil, err
	}
	if profile.FollowerCount, err = s.userFollowRepo.GetUserFollowerCount(ctx, id); err != nil {
		return nil, err
	}
	if profile.LikeCount, err = s.likeRepo.GetLikeCount(ctx, id); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile 需要当前密码确认，空的图片地址恢复为默认值
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id uint64, form *dto.ProfileDTO) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = security.CheckPasswordHash(form.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}
	if err = util.ValidateDTO(form); err != nil {
		return nil, fmt.Errorf("%w %v", ErrParamInvalid, err)
	}

	if form.Username != user.Username {
		if err = s.checkUnique(ctx, form.Username, ""); err != nil {
			return nil, err
		}
	}
	if form.Email != user.Email {
		if err = s.checkUnique(ctx, "", form.Email); err != nil {
			return nil, err
		}
	}

	if err = copier.Copy(user, form); err != nil {
		return nil, err
	}
	if user.ImageURL == "" {
		user.ImageURL = model.DefaultImageURL
	}
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = model.DefaultHeaderImageURL
	}

	if err = s.userRepo.UpdateUser(ctx, user); err != nil {
		if isDuplicateError(err) {
			return nil, ErrUserExist
		}
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uint64) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err = s.userRepo.DeleteUser(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, &kafka.Event{
		Name:    kafka.EventUserDeleted,
		ActorID: user.ID,
		Payload: map[string]string{"username": user.Username},
	})
	return nil
}

// checkUnique 空字符串表示跳过对应检查
func (s *UserServiceImpl) checkUnique(ctx context.Context, username, email string) error {
	if username != "" {
		found, err := s.userRepo.GetUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if found != nil {
			return ErrUserUsernameExist
		}
	}
	if email != "" {
		found, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if found != nil {
			return ErrUserEmailExist
		}
	}
	return nil
}
