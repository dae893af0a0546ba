package domain

import "context"

type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleSales       UserRole = "sales"
	UserRoleProcurement UserRole = "procurement"
)

var AllUserRoles []UserRole = []UserRole{UserRoleAdmin, UserRoleSales, UserRoleProcurement}

func IsValidUserRole(s string) bool {
	for _, r := range AllUserRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// User is a dashboard account. Password is omitted from JSON responses sent
// to clients; it is only populated when loading from storage.
type User struct {
	Id       string   `json:"id"`
	Username string   `json:"username"`
	Password string   `json:"password,omitempty"`
	Role     UserRole `json:"role"`
}

// WithoutPassword returns a copy safe to send to clients.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}

// UserStorage defines the interface for user-related database operations
type UserStorage interface {
	PersistUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userId string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, userId string) error
	ReplaceAllUsers(ctx context.Context, users []User) error
}
