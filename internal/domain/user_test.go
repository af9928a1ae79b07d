package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  Ada Lovelace ", "  Ada@Example.COM ", " s3cretpass ", 36)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if user.Name != "Ada Lovelace" {
		t.Errorf("Expected trimmed name, got %q", user.Name)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
	if user.Password != "s3cretpass" {
		t.Errorf("Expected trimmed password, got %q", user.Password)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewUserPasswordRules(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"seven characters", "abcdefg", false},
		{"six characters", "abcdef", true},
		{"empty", "", true},
		{"contains password", "mypassword1", true},
		{"contains password mixed case", "MyPassWord1", true},
		{"multibyte runes counted as characters", "ééééééé", false},
		{"too long for bcrypt", strings.Repeat("a", 73), true},
		{"whitespace only counts after trim", "   abc   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser("Ada", "ada@example.com", tt.password, 0)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Expected ValidationError, got %v", err)
				}
				if _, ok := verr.Fields["password"]; !ok {
					t.Errorf("Expected password field failure, got %v", verr.Fields)
				}
				if !errors.Is(err, ErrValidation) {
					t.Error("Expected error to wrap ErrValidation")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	valid := func() User {
		return User{
			ID:             uuid.New(),
			Name:           "Ada",
			Email:          "ada@example.com",
			HashedPassword: "$2a$08$abcdefghijklmnopqrstuv",
		}
	}

	tests := []struct {
		name       string
		mutate     func(u *User)
		wantFields []string
	}{
		{"valid stored user", func(u *User) {}, nil},
		{"missing id", func(u *User) { u.ID = uuid.Nil }, []string{"id"}},
		{"missing name", func(u *User) { u.Name = "" }, []string{"name"}},
		{"invalid email", func(u *User) { u.Email = "not-an-email" }, []string{"email"}},
		{"negative age", func(u *User) { u.Age = -1 }, []string{"age"}},
		{"no password at all", func(u *User) { u.HashedPassword = "" }, []string{"password"}},
		{
			"several failures reported together",
			func(u *User) {
				u.Name = ""
				u.Email = ""
				u.Age = -5
			},
			[]string{"name", "email", "age"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(&u)
			err := u.Validate()

			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Errorf("Expected %d field failures, got %v", len(tt.wantFields), verr.Fields)
			}
			for _, f := range tt.wantFields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("Expected failure for field %q, got %v", f, verr.Fields)
				}
			}
		})
	}
}

func TestUserSerializationOmitsSecrets(t *testing.T) {
	user := &User{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.com",
		Password:       "plaintext-secret",
		HashedPassword: "$2a$08$hash",
		Tokens:         []string{"token-one", "token-two"},
	}

	for name, v := range map[string]any{"user": user, "public view": user.Public()} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal failed: %v", name, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", name, err)
		}
		for _, forbidden := range []string{"password", "Password", "hashed_password", "HashedPassword", "tokens", "Tokens", "avatar"} {
			if _, ok := fields[forbidden]; ok {
				t.Errorf("%s: serialized form must not contain %q", name, forbidden)
			}
		}
		for _, secret := range []string{"plaintext-secret", "$2a$08$hash", "token-one"} {
			if strings.Contains(string(data), secret) {
				t.Errorf("%s: serialized form leaks %q", name, secret)
			}
		}
		if fields["email"] != "ada@example.com" {
			t.Errorf("%s: expected email in public view", name)
		}
	}
}

func TestUserHasToken(t *testing.T) {
	u := &User{Tokens: []string{"a", "b"}}
	if !u.HasToken("b") {
		t.Error("Expected token b to be present")
	}
	if u.HasToken("c") {
		t.Error("Expected token c to be absent")
	}
}

func TestUserPatchApply(t *testing.T) {
	base := func() *User {
		return &User{
			ID:             uuid.New(),
			Name:           "Ada",
			Email:          "ada@example.com",
			HashedPassword: "$2a$08$hash",
		}
	}

	name := " Grace "
	email := "GRACE@Example.com"
	u := base()
	if err := (UserPatch{Name: &name, Email: &email}).Apply(u); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if u.Name != "Grace" || u.Email != "grace@example.com" {
		t.Errorf("Expected normalized values, got %q %q", u.Name, u.Email)
	}

	badAge := -3
	if err := (UserPatch{Age: &badAge}).Apply(base()); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for negative age, got %v", err)
	}

	weak := "password123"
	if err := (UserPatch{Password: &weak}).Apply(base()); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for weak password, got %v", err)
	}

	blank := "   "
	if err := (UserPatch{Password: &blank}).Apply(base()); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for blank password, got %v", err)
	}
}
