package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// ErrEmailTaken 唯一索引冲突（并发注册同一邮箱）
var ErrEmailTaken = errors.New("email already taken")

type User struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FirstName string         `gorm:"column:firstName;size:64;not null" json:"firstName"`
	LastName  string         `gorm:"column:lastName;size:64;not null" json:"lastName"`
	Email     string         `gorm:"column:email;uniqueIndex;size:191;not null" json:"email"`
	Password  string         `gorm:"column:password;size:100;not null" json:"-"`
	Role      Role           `gorm:"column:role;size:16;not null;default:user" json:"role"`
	ImageURL  *string        `gorm:"column:imageUrl;size:512" json:"imageUrl,omitempty"`
	IsDeleted int            `gorm:"column:isDeleted;not null;default:0" json:"-"`
	CreatedAt time.Time      `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updatedAt;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deletedAt;index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
}
