package consts

const (
	// MessageListLimit 主页时间线与个人主页展示的消息条数
	MessageListLimit    = 100
	MaxMessageListLimit = 500
)

// gin.Context 中保存当前用户的键
const (
	CtxUserKey   = "curr_user"
	CtxUserIDKey = "user_id"
)
