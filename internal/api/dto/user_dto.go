package dto

// SignupDTO 注册表单
type SignupDTO struct {
	Username string `form:"username" json:"username" validate:"required,notblank,max=50"`
	Email    string `form:"email" json:"email" validate:"required,email,max=255"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
	ImageURL string `form:"image_url" json:"image_url,omitempty" validate:"omitempty,max=512"`
}

// LoginDTO 登录表单，API 换取 token 时同样使用
type LoginDTO struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// ProfileDTO 编辑资料表单，Password 为当前密码
type ProfileDTO struct {
	Username       string `form:"username" json:"username" validate:"required,notblank,max=50"`
	Email          string `form:"email" json:"email" validate:"required,email,max=255"`
	ImageURL       string `form:"image_url" json:"image_url" validate:"omitempty,max=512"`
	HeaderImageURL string `form:"header_image_url" json:"header_image_url" validate:"omitempty,max=512"`
	Bio            string `form:"bio" json:"bio" validate:"max=255"`
	Location       string `form:"location" json:"location" validate:"max=100"`
	Password       string `form:"password" json:"password" validate:"required" copier:"-"`
}

type UserDTO struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
}

// ProfileInfoDTO 个人主页信息
type ProfileInfoDTO struct {
	UserDTO
	MessageCount   int64 `json:"message_count"`
	FollowingCount int64 `json:"following_count"`
	FollowerCount  int64 `json:"follower_count"`
	LikeCount      int64 `json:"like_count"`
}

type TokenDTO struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
