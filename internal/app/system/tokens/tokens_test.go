package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/portfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"3600", time.Hour, false},
		{"", 0, true},
		{"abc", 0, true},
		{"xd", 0, true},
		{"0", 0, true},
		{"-5m", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseExpiry(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseExpiry(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExpiry(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_RequiresSecretAndExpiry(t *testing.T) {
	if _, err := New("", "30d"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing secret: err = %v", err)
	}
	if _, err := New("secret", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing expiry: err = %v", err)
	}
}

func TestIssue_NilServiceFailsHard(t *testing.T) {
	var s *Service
	if _, _, err := s.Issue(primitive.NewObjectID(), models.RoleAdmin); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestIssueAndParse(t *testing.T) {
	s, err := New("test-secret", "1h")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := primitive.NewObjectID()

	tok, exp, err := s.Issue(id, models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 59*time.Minute {
		t.Errorf("expiry too soon: %v", exp)
	}

	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != id.Hex() || claims.Role != models.RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
}

func TestParse_Rejects(t *testing.T) {
	s, _ := New("secret-a", "1h")
	other, _ := New("secret-b", "1h")
	tok, _, _ := other.Issue(primitive.NewObjectID(), models.RoleUser)

	if _, err := s.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}
	if _, err := s.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	s, _ := New("secret", "1m")
	s.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	tok, _, err := s.Issue(primitive.NewObjectID(), models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	s.now = time.Now
	if _, err := s.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: err = %v", err)
	}
}
