package user

import domain "user-crud-service/internal/domain/user"

// CreateUserRequest represents the input for creating a new user.
type CreateUserRequest struct {
	Name  string
	Email string
	Age   *int
}

// UpdateUserRequest represents a partial update. Nil fields are left untouched.
type UpdateUserRequest struct {
	ID    string
	Name  *string
	Email *string
	Age   *int
}

// Patch converts the request into a domain patch.
func (r UpdateUserRequest) Patch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Email: r.Email, Age: r.Age}
}

// ListUsersRequest represents the input for listing users.
// An empty Query lists every user.
type ListUsersRequest struct {
	Query string
}

// ListUsersResponse carries the users and their count.
type ListUsersResponse struct {
	Users []domain.User
	Count int
}
