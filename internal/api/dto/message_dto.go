package dto

import "time"

// MessageFormDTO 发布消息表单
type MessageFormDTO struct {
	Text string `form:"text" json:"text" validate:"required,notblank,max=140"`
}

type MessageDTO struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
}
