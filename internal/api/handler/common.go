package handler

import (
	"Warbler/internal/api/view"
	"Warbler/internal/pkg/util"
	"Warbler/internal/service"
	"fmt"

	"github.com/gin-gonic/gin"
)

func paramID(c *gin.Context, name string) (uint64, bool) {
	return util.ParseID(c.Param(name))
}

func userPath(id uint64) string {
	return fmt.Sprintf("/users/%d", id)
}

// loadProfile 个人主页头部所需的数据
func loadProfile(c *gin.Context, userSvc service.UserService, userID uint64) (gin.H, error) {
	profile, err := userSvc.GetProfile(c, userID)
	if err != nil {
		return nil, err
	}

	data := gin.H{"Profile": profile, "IsFollowing": false}
	if curr := view.CurrentUser(c); curr != nil && curr.ID != userID {
		following, err := userSvc.IsFollowing(c, curr.ID, userID)
		if err != nil {
			return nil, err
		}
		data["IsFollowing"] = following
	}
	return data, nil
}

// likedSet 当前用户点过赞的消息，匿名时为空
func likedSet(c *gin.Context, likeSvc service.LikeService) (map[uint64]bool, error) {
	curr := view.CurrentUser(c)
	if curr == nil {
		return map[uint64]bool{}, nil
	}
	return likeSvc.LikedMessageIDs(c, curr.ID)
}
