// Package profile is the name-and-PIN gate in front of a companion profile.
// The first run creates the profile; later runs must present the same name
// (any case) and PIN.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sethgrid/pelioscope/internal/storage"
)

const (
	KeyUserName = "userName"
	KeyUserPIN  = "userPin"

	PINLength = 4
)

var (
	ErrNameRequired = errors.New("please enter your name")
	ErrInvalidPIN   = errors.New("PIN must be 4 digits")
	ErrMismatch     = errors.New("incorrect name or PIN")
	ErrNoProfile    = errors.New("no profile has been created")
	ErrExists       = errors.New("a profile already exists")
)

type Gate struct {
	store storage.Store
	cost  int
}

type Option func(*Gate)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(g *Gate) { g.cost = cost }
}

func NewGate(store storage.Store, opts ...Option) *Gate {
	g := &Gate{store: store, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the stored user name, empty before the first run.
func (g *Gate) Name() (string, error) {
	return storage.Load(g.store, KeyUserName, "")
}

// FirstRun reports whether no profile exists yet.
func (g *Gate) FirstRun() (bool, error) {
	name, err := g.Name()
	if err != nil {
		return false, err
	}
	return name == "", nil
}

// Create sets up the profile on the first run.
func (g *Gate) Create(name, pin string) (string, error) {
	first, err := g.FirstRun()
	if err != nil {
		return "", err
	}
	if !first {
		return "", ErrExists
	}
	return g.write(name, pin)
}

// Login checks name and PIN against the stored profile and returns the
// stored name.
func (g *Gate) Login(name, pin string) (string, error) {
	name, err := validate(name, pin)
	if err != nil {
		return "", err
	}
	stored, err := g.Name()
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", ErrNoProfile
	}
	hash, err := storage.Load(g.store, KeyUserPIN, "")
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(name, stored) {
		return "", ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return "", ErrMismatch
	}
	return stored, nil
}

// Switch replaces the profile with a new name and PIN. The rest of the
// companion state is kept.
func (g *Gate) Switch(name, pin string) (string, error) {
	return g.write(name, pin)
}

func (g *Gate) write(name, pin string) (string, error) {
	name, err := validate(name, pin)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), g.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	if err := storage.Save(g.store, KeyUserPIN, string(hash)); err != nil {
		return "", err
	}
	if err := storage.Save(g.store, KeyUserName, name); err != nil {
		return "", err
	}
	return name, nil
}

func validate(name, pin string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len(pin) != PINLength {
		return "", ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return "", ErrInvalidPIN
		}
	}
	return name, nil
}
