package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// Users is the profile registry shared by all users, backed by a single
// sqlite file. Reads on the webhook hot path go through a small TTL cache.
type Users struct {
	db    *sql.DB
	cache *gocache.Cache
}

func NewUsers(dbPath string) (*Users, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open users db: %w", err)
	}
	if err := migrateUsers(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate users db: %w", err)
	}
	return &Users{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

func (u *Users) Close() error {
	return u.db.Close()
}

// Get returns the profile for phone, or ErrUserNotFound.
func (u *Users) Get(phone string) (*models.User, error) {
	if cached, ok := u.cache.Get(phone); ok {
		user := cached.(models.User)
		return &user, nil
	}

	var user models.User
	var accepted int
	err := u.db.QueryRow(
		`SELECT phone, name, privacy_accepted, COALESCE(unique_id, ''), created_at FROM users WHERE phone = ?`,
		phone,
	).Scan(&user.Phone, &user.Name, &accepted, &user.UniqueID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.PrivacyAccepted = accepted != 0

	u.cache.SetDefault(phone, user)
	return &user, nil
}

// Create registers a new user with a generated opaque id. Privacy starts
// unaccepted; the user must opt in before any financial processing.
func (u *Users) Create(phone string) (*models.User, error) {
	uniqueID := uuid.NewString()
	_, err := u.db.Exec(
		`INSERT INTO users (phone, unique_id, privacy_accepted) VALUES (?, ?, 0)`,
		phone, uniqueID,
	)
	if err != nil {
		return nil, err
	}
	u.cache.Delete(phone)
	return u.Get(phone)
}

func (u *Users) SetPrivacyAccepted(phone string, accepted bool) error {
	val := 0
	if accepted {
		val = 1
	}
	_, err := u.db.Exec(`UPDATE users SET privacy_accepted = ? WHERE phone = ?`, val, phone)
	u.cache.Delete(phone)
	return err
}

func (u *Users) SetName(phone, name string) error {
	result, err := u.db.Exec(`UPDATE users SET name = ? WHERE phone = ?`, name, phone)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	u.cache.Delete(phone)
	return nil
}

// Name returns the display name for phone, defaulting to "User".
func (u *Users) Name(phone string) string {
	user, err := u.Get(phone)
	if err != nil {
		return "User"
	}
	return user.Name
}
