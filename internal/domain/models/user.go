// internal/domain/models/user.go
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUserNameLen    = 50
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// User is an account that can sign in to the admin API.
//
// Password holds the bcrypt hash once persisted. Default reads project it
// away, so it is empty on most loaded values. Assign a new plaintext with
// SetPassword so the store knows to hash it on save.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	Role     Role               `bson:"role" json:"role"`

	ResetPasswordToken   string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"reset_password_expires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	passwordDirty bool
}

// UserPatch is a partial User used by admin edits.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`
	Password *string `json:"password"`
}

// SetPassword stores a new plaintext password and marks the field dirty.
func (u *User) SetPassword(plain string) {
	u.Password = plain
	u.passwordDirty = true
}

// PasswordDirty reports whether Password holds a plaintext awaiting hashing.
func (u *User) PasswordDirty() bool { return u.passwordDirty }

// SetPasswordHash records the persisted hash and clears the dirty flag.
func (u *User) SetPasswordHash(hash string) {
	u.Password = hash
	u.passwordDirty = false
}

// MatchPassword compares candidate against the stored hash. It returns false
// when no hash is loaded or the password is still dirty.
func (u *User) MatchPassword(candidate string) bool {
	if u.passwordDirty || u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// Apply copies every non-nil field of p onto u. A password goes through
// SetPassword.
func (u *User) Apply(p UserPatch) {
	setString(&u.Name, p.Name)
	setString(&u.Email, p.Email)
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Password != nil {
		u.SetPassword(*p.Password)
	}
}

// Normalize trims the name, lowercases the email and fills the default role.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// Validate checks the record as it will be saved. The password length rule
// only applies to a dirty (plaintext) password.
func (u *User) Validate() error {
	v := &ValidationError{}
	switch {
	case u.Name == "":
		v.Add("name", "Please enter your name")
	case utf8.RuneCountInString(u.Name) > MaxUserNameLen:
		v.Add("name", "Name cannot exceed 50 characters")
	}
	switch {
	case u.Email == "":
		v.Add("email", "Please enter your email")
	case !IsEmail(u.Email):
		v.Add("email", "Please enter a valid email address")
	}
	if u.passwordDirty {
		switch {
		case u.Password == "":
			v.Add("password", "Please enter your password")
		case len(u.Password) < MinPasswordLength:
			v.Add("password", "Password must be at least 6 characters long")
		case len(u.Password) > MaxPasswordLength:
			v.Add("password", "Password cannot exceed 72 bytes")
		}
	} else if u.ID.IsZero() && u.Password == "" {
		v.Add("password", "Please enter your password")
	}
	if !u.Role.Valid() {
		v.Add("role", "Role must be admin or user")
	}
	return v.orNil()
}
