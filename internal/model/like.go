package model

type Like struct {
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	MessageID uint64 `gorm:"primaryKey;autoIncrement:false;index:idx_message_id" json:"message_id"`

	User    *User    `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Message *Message `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
