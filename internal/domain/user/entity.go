package user

import (
	"strings"
	"time"
)

// User represents a user entity in the system.
type User struct {
	ID        string    `json:"id"`             // ID is assigned by the store and never changes
	Name      string    `json:"name"`           // Name is the trimmed display name
	Email     string    `json:"email"`          // Email is unique, trimmed and lower-cased
	Age       *int      `json:"age,omitempty"`  // Age is optional; nil means not provided
	CreatedAt time.Time `json:"createdAt"`      // CreatedAt is set once on insert
	UpdatedAt time.Time `json:"updatedAt"`      // UpdatedAt is refreshed on every write
}

// Normalize trims the name and trims and lower-cases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
}

// Validate runs every field rule against the user and returns a
// *errors.ValidationError listing all violations, or nil.
func (u *User) Validate() error {
	return validateFields(&u.Name, &u.Email, u.Age)
}

// UserPatch is a partial update. Nil fields are not supplied and stay untouched.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Age   *int    `json:"age,omitempty"`
}

// IsEmpty reports whether the patch supplies no fields.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Age == nil
}

// Normalize applies the same trimming and casing rules as User.Normalize
// to the supplied fields.
func (p *UserPatch) Normalize() {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Email != nil {
		email := NormalizeEmail(*p.Email)
		p.Email = &email
	}
}

// Validate checks only the supplied fields.
func (p UserPatch) Validate() error {
	return validateFields(p.Name, p.Email, p.Age)
}

// ApplyTo copies the supplied fields onto u.
func (p UserPatch) ApplyTo(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
