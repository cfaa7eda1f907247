package domain

type UserRole string

const (
	UserRoleRenter UserRole = "renter"
	UserRoleAdmin  UserRole = "admin"
)

type User struct {
	ID           int32    `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	PhoneNumber  string   `json:"phone_number"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	// TotalRentals is the lifetime counter incremented when a reservation
	// completes.
	TotalRentals int32  `json:"total_rentals"`
	CreatedOn    string `json:"created_on"`
	UpdatedOn    string `json:"updated_on"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
