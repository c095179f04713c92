// Package user provides the marketplace user record.
package user

// Type distinguishes students looking for housing from property owners.
type Type string

const (
	Student Type = "student"
	Owner   Type = "owner"
)

// IsValid checks if a user type is recognized.
func (t Type) IsValid() bool {
	return t == Student || t == Owner
}

// Label returns a human-readable label for the user type.
func (t Type) Label() string {
	switch t {
	case Student:
		return "Estudiante"
	case Owner:
		return "Propietario"
	default:
		return string(t)
	}
}

// User is the authenticated account as returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	UserType  Type   `json:"user_type"`
	StudentID string `json:"student_id,omitempty"`
}

// IsOwner reports whether the user publishes properties.
func (u *User) IsOwner() bool {
	return u != nil && u.UserType == Owner
}

// IsStudent reports whether the user is a student.
func (u *User) IsStudent() bool {
	return u != nil && u.UserType == Student
}
