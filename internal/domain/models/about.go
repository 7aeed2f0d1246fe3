// internal/domain/models/about.go
package models

import (
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AboutSingletonKey is the value of the unique `singleton` field carried by
// the one About document. The unique index on that field keeps the
// collection at zero or one documents.
const AboutSingletonKey = "about"

// About is the portfolio owner's profile. At most one exists.
type About struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Singleton string             `bson:"singleton" json:"-"`

	Name         string `bson:"name,omitempty" json:"name,omitempty"`
	Title        string `bson:"title,omitempty" json:"title,omitempty"`
	Tagline      string `bson:"tagline,omitempty" json:"tagline,omitempty"`
	Summary      string `bson:"summary" json:"summary"`
	Bio          string `bson:"bio,omitempty" json:"bio,omitempty"` // sanitized HTML
	Location     string `bson:"location,omitempty" json:"location,omitempty"`
	ProfileImage string `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	ResumeURL    string `bson:"resume_url,omitempty" json:"resumeUrl,omitempty"`

	SocialLinks  SocialLinks   `bson:"social_links" json:"socialLinks"`
	ContactInfo  ContactInfo   `bson:"contact_info" json:"contactInfo"`
	Availability *Availability `bson:"availability,omitempty" json:"availability,omitempty"`

	Visibility Visibility `bson:"visibility" json:"visibility"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// SocialLinks are the owner's public profile links.
type SocialLinks struct {
	LinkedIn string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub   string `bson:"github,omitempty" json:"github,omitempty"`
	Twitter  string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Website  string `bson:"website,omitempty" json:"website,omitempty"`
}

// ContactInfo is how visitors reach the owner directly.
type ContactInfo struct {
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Availability describes whether the owner is open to new work.
type Availability struct {
	Status        AvailabilityStatus `bson:"status" json:"status"`
	Message       string             `bson:"message,omitempty" json:"message,omitempty"`
	AvailableFrom *time.Time         `bson:"available_from,omitempty" json:"availableFrom,omitempty"`
	HourlyRate    *float64           `bson:"hourly_rate,omitempty" json:"hourlyRate,omitempty"`
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
}

// AboutPatch is a partial About. Nil fields are left untouched; nested
// objects replace the stored sub-object as a whole.
type AboutPatch struct {
	Name         *string       `json:"name"`
	Title        *string       `json:"title"`
	Tagline      *string       `json:"tagline"`
	Summary      *string       `json:"summary"`
	Bio          *string       `json:"bio"`
	Location     *string       `json:"location"`
	ProfileImage *string       `json:"profileImage"`
	ResumeURL    *string       `json:"resumeUrl"`
	SocialLinks  *SocialLinks  `json:"socialLinks"`
	ContactInfo  *ContactInfo  `json:"contactInfo"`
	Availability *Availability `json:"availability"`
	Visibility   *Visibility   `json:"visibility"`
}

// SocialLinksPatch is a partial SocialLinks. Nil fields keep the stored
// link; an empty string clears it.
type SocialLinksPatch struct {
	LinkedIn *string `json:"linkedin"`
	GitHub   *string `json:"github"`
	Twitter  *string `json:"twitter"`
	Website  *string `json:"website"`
}

// AvailabilityPatch is a partial Availability. Nil fields keep the stored
// value.
type AvailabilityPatch struct {
	Status        *AvailabilityStatus `json:"status"`
	Message       *string             `json:"message"`
	AvailableFrom *time.Time          `json:"availableFrom"`
	HourlyRate    *float64            `json:"hourlyRate"`
	Currency      *string             `json:"currency"`
}

// Apply copies every non-nil field of p onto a.
func (a *About) Apply(p AboutPatch) {
	setString(&a.Name, p.Name)
	setString(&a.Title, p.Title)
	setString(&a.Tagline, p.Tagline)
	setString(&a.Summary, p.Summary)
	setString(&a.Bio, p.Bio)
	setString(&a.Location, p.Location)
	setString(&a.ProfileImage, p.ProfileImage)
	setString(&a.ResumeURL, p.ResumeURL)
	if p.SocialLinks != nil {
		a.SocialLinks = *p.SocialLinks
	}
	if p.ContactInfo != nil {
		a.ContactInfo = *p.ContactInfo
	}
	if p.Availability != nil {
		av := *p.Availability
		a.Availability = &av
	}
	if p.Visibility != nil {
		a.Visibility = *p.Visibility
	}
}

// Normalize trims text fields and fills the default visibility.
func (a *About) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Title = strings.TrimSpace(a.Title)
	a.Tagline = strings.TrimSpace(a.Tagline)
	a.Summary = strings.TrimSpace(a.Summary)
	a.Bio = strings.TrimSpace(a.Bio)
	a.Location = strings.TrimSpace(a.Location)
	a.SocialLinks.Normalize()
	a.ContactInfo.Email = strings.ToLower(strings.TrimSpace(a.ContactInfo.Email))
	a.ContactInfo.Phone = strings.TrimSpace(a.ContactInfo.Phone)
	if a.Availability != nil {
		a.Availability.Normalize()
	}
	if a.Visibility == "" {
		a.Visibility = VisibilityPublic
	}
}

// Validate checks the record the way it will be stored.
func (a *About) Validate() error {
	v := &ValidationError{}
	if a.Summary == "" {
		v.Add("summary", "Please add a summary")
	}
	if !a.Visibility.Valid() {
		v.Add("visibility", "Visibility must be one of public, unlisted, private, draft")
	}
	a.SocialLinks.validate(v)
	a.ContactInfo.validate(v)
	if a.Availability != nil {
		a.Availability.validate(v)
	}
	return v.orNil()
}

// Apply copies every non-nil field of p onto s.
func (s *SocialLinks) Apply(p SocialLinksPatch) {
	setString(&s.LinkedIn, p.LinkedIn)
	setString(&s.GitHub, p.GitHub)
	setString(&s.Twitter, p.Twitter)
	setString(&s.Website, p.Website)
}

// Normalize trims every link.
func (s *SocialLinks) Normalize() {
	s.LinkedIn = strings.TrimSpace(s.LinkedIn)
	s.GitHub = strings.TrimSpace(s.GitHub)
	s.Twitter = strings.TrimSpace(s.Twitter)
	s.Website = strings.TrimSpace(s.Website)
}

// Validate checks a standalone social links object.
func (s SocialLinks) Validate() error {
	v := &ValidationError{}
	s.validate(v)
	return v.orNil()
}

func (s SocialLinks) validate(v *ValidationError) {
	for field, link := range map[string]string{
		"socialLinks.linkedin": s.LinkedIn,
		"socialLinks.github":   s.GitHub,
		"socialLinks.twitter":  s.Twitter,
		"socialLinks.website":  s.Website,
	} {
		if link != "" && !isWebURL(link) {
			v.Add(field, "Please enter a valid http(s) URL")
		}
	}
}

func (c ContactInfo) validate(v *ValidationError) {
	if c.Email != "" && !IsEmail(c.Email) {
		v.Add("contactInfo.email", "Please enter a valid email address")
	}
}

// Apply copies every non-nil field of p onto av.
func (av *Availability) Apply(p AvailabilityPatch) {
	if p.Status != nil {
		av.Status = *p.Status
	}
	setString(&av.Message, p.Message)
	if p.AvailableFrom != nil {
		t := *p.AvailableFrom
		av.AvailableFrom = &t
	}
	if p.HourlyRate != nil {
		r := *p.HourlyRate
		av.HourlyRate = &r
	}
	setString(&av.Currency, p.Currency)
}

// Normalize trims the message and upper-cases the currency code.
func (av *Availability) Normalize() {
	av.Message = strings.TrimSpace(av.Message)
	av.Currency = strings.ToUpper(strings.TrimSpace(av.Currency))
}

// Validate checks a standalone availability object.
func (av Availability) Validate() error {
	v := &ValidationError{}
	av.validate(v)
	return v.orNil()
}

func (av Availability) validate(v *ValidationError) {
	if !av.Status.Valid() {
		v.Add("availability.status", "Status must be one of available, busy, not-available")
	}
	if av.HourlyRate != nil && *av.HourlyRate < 0 {
		v.Add("availability.hourlyRate", "Hourly rate cannot be negative")
	}
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
