package model

import "fmt"

const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

type User struct {
	ID             uint64 `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"type:varchar(255);not null;uniqueIndex:idx_email" json:"email"`
	Username       string `gorm:"type:varchar(50);not null;uniqueIndex:idx_username" json:"username"`
	Password       string `gorm:"type:varchar(255);not null" json:"-"`
	ImageURL       string `gorm:"type:varchar(512);column:image_url;default:'/static/images/default-pic.png'" json:"image_url"`
	HeaderImageURL string `gorm:"type:varchar(512);column:header_image_url;default:'/static/images/warbler-hero.jpg'" json:"header_image_url"`
	Bio            string `gorm:"type:varchar(255)" json:"bio"`
	Location       string `gorm:"type:varchar(100)" json:"location"`
}

func (User) TableName() string {
	return "users"
}

// String 调试输出格式，形如 <User #1: testuser, test@test.com>
func (u User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
