package auth

const (
	RoleCustomer   = "CUSTOMER"
	RoleRestaurant = "RESTAURANT"
)

// User is the domain entity.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleRestaurant
}
