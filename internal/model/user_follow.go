package model

// Follow 有向边：FollowerID 关注了 FollowedID
type Follow struct {
	FollowerID uint64 `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint64 `gorm:"primaryKey;autoIncrement:false;index:idx_followed_id" json:"followed_id"`

	Follower *User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Followed *User `gorm:"foreignKey:FollowedID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
