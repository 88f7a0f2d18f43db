package user

type User struct {
	ID        int    `json:"userId"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsAdmin   bool   `json:"isAdmin,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CanModify is the single capability check applied to owned resources
// (products, orders, carts): only the owner may mutate them.
func CanModify(userID, ownerID int) bool {
	return userID > 0 && userID == ownerID
}
