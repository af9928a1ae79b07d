package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// MinPasswordLength is exclusive: a password must be longer than this.
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
)

// UserUpdateFields lists the JSON keys a user may change on their own profile.
var UserUpdateFields = []string{"name", "email", "password", "age"}

var validate = validator.New()

// User represents a registered user of the application.
// Password holds plaintext only transiently during registration and
// updates; only HashedPassword is ever persisted.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"`
	HashedPassword string    `json:"-"`
	Tokens         []string  `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicUser is the only representation of a User sent to clients.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User after normalizing and validating its fields.
//
// The caller is responsible for hashing the plaintext password before storing the user.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  strings.TrimSpace(password),
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks every field and reports all failures together.
func (u *User) Validate() error {
	verr := &ValidationError{}

	if u.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if u.Name == "" {
		verr.Add("name", "is required")
	}
	if msg := emailProblem(u.Email); msg != "" {
		verr.Add("email", msg)
	}
	if u.Age < 0 {
		verr.Add("age", "must be a positive number")
	}

	if u.Password != "" {
		if msg := passwordProblem(u.Password); msg != "" {
			verr.Add("password", msg)
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from storage carry only the hash.
		verr.Add("password", "is required")
	}

	return verr.OrNil()
}

// Public returns the externally visible view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HasToken reports whether token is among the user's active session tokens.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks a plaintext password against the password rules.
// The password is expected to be trimmed already.
func ValidatePassword(password string) error {
	if msg := passwordProblem(password); msg != "" {
		return NewValidationError("password", msg)
	}
	return nil
}

func emailProblem(email string) string {
	if email == "" {
		return "is required"
	}
	if err := validate.Var(email, "email"); err != nil {
		return "is invalid"
	}
	return ""
}

func passwordProblem(password string) string {
	switch {
	case password == "":
		return "is required"
	case utf8.RuneCountInString(password) <= MinPasswordLength:
		return "must be longer than 6 characters"
	case len(password) > MaxPasswordBytes:
		return "must be at most 72 bytes long"
	case strings.Contains(strings.ToLower(password), "password"):
		return `cannot contain "password"`
	}
	return ""
}

// UserPatch is a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// Apply normalizes the patch values, writes them to u and validates the
// result. On failure u may be partially modified and must be discarded.
func (p UserPatch) Apply(u *User) error {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		u.Password = strings.TrimSpace(*p.Password)
		if u.Password == "" {
			return NewValidationError("password", "is required")
		}
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	return u.Validate()
}
