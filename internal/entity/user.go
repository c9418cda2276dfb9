package entity

type User struct {
	Base
	Name           string `gorm:"unique"`
	ProfilePicture string
}
