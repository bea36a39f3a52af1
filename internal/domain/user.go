package domain

import "time"

type UserType string

const (
	UserClient     UserType = "client"
	UserAdmin      UserType = "admin"
	UserSuperadmin UserType = "superadmin"
)

func ParseUserType(s string) (UserType, bool) {
	switch UserType(s) {
	case UserClient, UserAdmin, UserSuperadmin:
		return UserType(s), true
	default:
		return "", false
	}
}

// IsStaff reports whether the type may use the back office.
func (t UserType) IsStaff() bool {
	return t == UserAdmin || t == UserSuperadmin
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username,omitempty"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Type         UserType  `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser is what the repository inserts. Either Email or Username is set.
type NewUser struct {
	Name         string
	Email        string
	Username     string
	Phone        string
	PasswordHash string
	Type         UserType
}

type RegisterReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=32"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateAdminReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin superadmin"`
}

// UpdateUserReq is a partial update: nil fields are left unchanged.
type UpdateUserReq struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=client admin superadmin"`
}

// UserPatch is the repository level form of UpdateUserReq, with the
// password already hashed.
type UserPatch struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	Type         *UserType
}

type LoginReq struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRes struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        *UserInfo `json:"user"`
}

type UserInfo struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Username string   `json:"username,omitempty"`
	Type     UserType `json:"type"`
}

func (u *User) Info() *UserInfo {
	return &UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Username: u.Username, Type: u.Type}
}
