package repository

import (
	"Warbler/internal/api/config"
	"Warbler/internal/model"
	"Warbler/internal/pkg/database"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	// 每次插入时钟前进一秒，保证时间线排序可预测
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	db, err := database.NewGormDB(&config.DBConfig{Driver: "sqlite", DSN: dsn}, database.WithNowFunc(now))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, repo UserRepo, username string) *model.User {
	u := &model.User{
		Username: username,
		Email:    username + "@test.com",
		Password: "HASHED_PASSWORD",
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func TestUserRepoCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newTestDB(t))

	u := createUser(t, repo, "testuser")
	require.NotZero(t, u.ID)

	got, err := repo.GetUserById(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", got.Username)
	assert.Equal(t, model.DefaultImageURL, got.ImageURL)
	assert.Equal(t, model.DefaultHeaderImageURL, got.HeaderImageURL)

	got, err = repo.GetUserByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetUserByEmail(ctx, "testuser@test.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetUserById(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoDuplicateUsername(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	createUser(t, repo, "testuser")

	dup := &model.User{Username: "testuser", Email: "x@test.com", Password: "HASHED_PASSWORD"}
	err := repo.CreateUser(context.Background(), dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepoCreateUsersRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newTestDB(t))

	users := []*model.User{
		{Username: "a", Email: "a@test.com", Password: "HASHED_PASSWORD"},
		{Username: "a", Email: "b@test.com", Password: "HASHED_PASSWORD"},
	}
	require.Error(t, repo.CreateUsers(ctx, users))

	got, err := repo.SearchUsers(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserRepoSearchUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newTestDB(t))
	createUser(t, repo, "alice")
	createUser(t, repo, "alfred")
	createUser(t, repo, "bob")

	got, err := repo.SearchUsers(ctx, "al", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "alfred", got[1].Username)

	got, err = repo.SearchUsers(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = repo.GetUserByIds(ctx, []uint64{got[0].ID, got[2].ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUserRepoSearchUsersEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newTestDB(t))
	createUser(t, repo, "alice")
	createUser(t, repo, "a_b")
	createUser(t, repo, "50%off")
	createUser(t, repo, "wow!")

	for query, want := range map[string][]string{
		"%":  {"50%off"},
		"_":  {"a_b"},
		"a_": {"a_b"},
		"!":  {"wow!"},
		"%_": nil,
	} {
		got, err := repo.SearchUsers(ctx, query, 0)
		require.NoError(t, err)
		names := make([]string, 0, len(got))
		for _, u := range got {
			names = append(names, u.Username)
		}
		assert.ElementsMatchf(t, want, names, "query %q", query)
	}
}

func TestUserRepoUpdateUserClearsFields(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newTestDB(t))
	u := createUser(t, repo, "testuser")

	u.Bio = "hello"
	u.Location = "Earth"
	require.NoError(t, repo.UpdateUser(ctx, u))

	u.Bio = ""
	require.NoError(t, repo.UpdateUser(ctx, u))

	got, err := repo.GetUserById(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Bio)
	assert.Equal(t, "Earth", got.Location)
	assert.Equal(t, "HASHED_PASSWORD", got.Password)
}

func TestUserRepoDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	follows := NewUserFollowRepo(db)
	messages := NewMessageRepo(db)
	likes := NewLikeRepo(db)

	u1 := createUser(t, users, "u1")
	u2 := createUser(t, users, "u2")

	m1 := &model.Message{Text: "by u1", UserID: u1.ID}
	m2 := &model.Message{Text: "by u2", UserID: u2.ID}
	require.NoError(t, messages.CreateMessage(ctx, m1))
	require.NoError(t, messages.CreateMessage(ctx, m2))

	require.NoError(t, follows.CreateUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))
	require.NoError(t, follows.CreateUserFollow(ctx, &model.Follow{FollowerID: u2.ID, FollowedID: u1.ID}))
	require.NoError(t, likes.CreateLike(ctx, &model.Like{UserID: u1.ID, MessageID: m2.ID}))
	require.NoError(t, likes.CreateLike(ctx, &model.Like{UserID: u2.ID, MessageID: m1.ID}))

	require.NoError(t, users.DeleteUser(ctx, u1.ID))

	got, err := users.GetUserById(ctx, u1.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	msg, err := messages.GetMessageById(ctx, m1.ID)
	require.NoError(t, err)
	assert.Nil(t, msg)

	count, err := follows.GetUserFollowerCount(ctx, u2.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = follows.GetUserFollowingCount(ctx, u2.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = likes.GetLikeCount(ctx, u2.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	msg, err = messages.GetMessageById(ctx, m2.ID)
	require.NoError(t, err)
	require.NotNil(t, msg)
}

func TestUserFollowRepo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	repo := NewUserFollowRepo(db)

	u1 := createUser(t, users, "u1")
	u2 := createUser(t, users, "u2")
	u3 := createUser(t, users, "u3")

	require.NoError(t, repo.CreateUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))
	require.NoError(t, repo.CreateUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u3.ID}))
	require.NoError(t, repo.CreateUserFollow(ctx, &model.Follow{FollowerID: u3.ID, FollowedID: u2.ID}))

	err := repo.CreateUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u2.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	following, err := repo.GetUserFollowing(ctx, u1.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, following, 2)
	assert.Equal(t, u2.ID, following[0].ID)
	assert.Equal(t, u3.ID, following[1].ID)

	followers, err := repo.GetUserFollowers(ctx, u2.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, u1.ID, followers[0].ID)

	ids, err := repo.GetUserFollowingIds(ctx, u1.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{u2.ID, u3.ID}, ids)

	edge, err := repo.GetUserFollow(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.Nil(t, edge)

	n, err := repo.DeleteUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u2.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u2.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := repo.GetUserFollowerCount(ctx, u2.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUserFollowRepoRequiresExistingUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u1 := createUser(t, NewUserRepo(db), "u1")

	err := NewUserFollowRepo(db).CreateUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: 999})
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestMessageRepoTimeline(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	follows := NewUserFollowRepo(db)
	repo := NewMessageRepo(db)

	u1 := createUser(t, users, "u1")
	u2 := createUser(t, users, "u2")
	u3 := createUser(t, users, "u3")
	require.NoError(t, follows.CreateUserFollow(ctx, &model.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))

	for _, m := range []*model.Message{
		{Text: "first", UserID: u1.ID},
		{Text: "second", UserID: u2.ID},
		{Text: "hidden", UserID: u3.ID},
		{Text: "third", UserID: u1.ID},
	} {
		require.NoError(t, repo.CreateMessage(ctx, m))
	}

	timeline, err := repo.GetTimeline(ctx, u1.ID, 100)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, "third", timeline[0].Text)
	assert.Equal(t, "second", timeline[1].Text)
	assert.Equal(t, "first", timeline[2].Text)
	require.NotNil(t, timeline[1].User)
	assert.Equal(t, "u2", timeline[1].User.Username)

	own, err := repo.GetMessagesByUserId(ctx, u1.ID, 1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "third", own[0].Text)

	count, err := repo.GetMessageCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestMessageRepoRequiresOwner(t *testing.T) {
	repo := NewMessageRepo(newTestDB(t))
	err := repo.CreateMessage(context.Background(), &model.Message{Text: "orphan", UserID: 42})
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestLikeRepo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	messages := NewMessageRepo(db)
	repo := NewLikeRepo(db)

	u1 := createUser(t, users, "u1")
	u2 := createUser(t, users, "u2")
	m := &model.Message{Text: "likeable", UserID: u2.ID}
	require.NoError(t, messages.CreateMessage(ctx, m))

	liked, err := repo.IsLiked(ctx, u1.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, repo.CreateLike(ctx, &model.Like{UserID: u1.ID, MessageID: m.ID}))

	liked, err = repo.IsLiked(ctx, u1.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	list, err := repo.GetLikedMessages(ctx, u1.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "likeable", list[0].Text)
	assert.Equal(t, "u2", list[0].User.Username)

	ids, err := repo.GetLikedMessageIds(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{m.ID}, ids)

	// 删除消息时点赞一并删除
	require.NoError(t, messages.DeleteMessage(ctx, m.ID))
	count, err := repo.GetLikeCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
