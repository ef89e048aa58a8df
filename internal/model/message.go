package model

import "time"

const MaxMessageLength = 140

type Message struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:varchar(140);not null" json:"text"`
	Timestamp time.Time `gorm:"not null;autoCreateTime;<-:create;index:idx_user_timestamp,priority:2" json:"timestamp"`
	UserID    uint64    `gorm:"not null;index:idx_user_timestamp,priority:1" json:"user_id"`

	// 关联关系，只在仓储层显式 Preload 时填充
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
