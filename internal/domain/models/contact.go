// internal/domain/models/contact.go
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinContactMessageLen is the shortest accepted message, counted in
// characters after trimming.
const MinContactMessageLen = 10

// Contact is one message left through the public contact form.
type Contact struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name    string             `bson:"name" json:"name"`
	Email   string             `bson:"email" json:"email"`
	Subject string             `bson:"subject" json:"subject"`
	Message string             `bson:"message" json:"message"`
	Read    bool               `bson:"read" json:"read"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ContactPatch is a partial Contact used by admin edits.
type ContactPatch struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Subject *string `json:"subject"`
	Message *string `json:"message"`
	Read    *bool   `json:"read"`
}

// Apply copies every non-nil field of p onto c.
func (c *Contact) Apply(p ContactPatch) {
	setString(&c.Name, p.Name)
	setString(&c.Email, p.Email)
	setString(&c.Subject, p.Subject)
	setString(&c.Message, p.Message)
	if p.Read != nil {
		c.Read = *p.Read
	}
}

// Normalize trims the text fields.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
}

// Validate runs on create and again on every update.
func (c *Contact) Validate() error {
	v := &ValidationError{}
	if c.Name == "" {
		v.Add("name", "Please enter your name")
	}
	switch {
	case c.Email == "":
		v.Add("email", "Please enter your email")
	case !IsEmail(c.Email):
		v.Add("email", "Please enter a valid email address")
	}
	if c.Subject == "" {
		v.Add("subject", "Please enter a subject")
	}
	switch {
	case c.Message == "":
		v.Add("message", "Please enter your message")
	case utf8.RuneCountInString(c.Message) < MinContactMessageLen:
		v.Add("message", "Message must be at least 10 characters long")
	}
	return v.orNil()
}
