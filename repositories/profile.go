//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	"fmt"
	"rosterhub/errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IProfileRepository interface {
	CreateProfile(name, email, hashedPassword string) (Profile, error)
	GetProfile(id string) (Profile, error)
	GetProfileByEmail(email string) (Profile, error)
	GetProfiles(ids []string) (map[string]Profile, error)
	AddMember(organizationID, profileID string) error
	IsMember(organizationID, profileID string) (bool, error)
}

type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Profile is the repository view of a registered user.
type Profile struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

type diskProfile struct {
	ID           string   `cbor:"id"`
	Name         string   `cbor:"name"`
	Email        string   `cbor:"email"`
	PasswordHash string   `cbor:"password_hash"`
	Roles        []string `cbor:"roles"`
	CreatedAt    int64    `cbor:"created_at"`
}

func profileKey(id string) []byte { return []byte("profile:" + id) }

func emailKey(email string) []byte { return []byte("email:" + strings.ToLower(email)) }

func memberKey(organizationID, profileID string) []byte {
	return []byte(fmt.Sprintf("member:%s:%s", organizationID, profileID))
}

// CreateProfile persists a new profile and reserves its e-mail in the same transaction.
func (r *ProfileRepository) CreateProfile(name, email, hashedPassword string) (Profile, error) {
	profile := Profile{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}
	data, err := marshal(fromProfile(profile))
	if err != nil {
		return Profile{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(profileKey(profile.ID), data); err != nil {
			return err
		}
		return txn.Set(emailKey(email), []byte(profile.ID))
	})
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) GetProfile(id string) (Profile, error) {
	var profile Profile
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		profile, err = getProfile(txn, id)
		return err
	})
	return profile, err
}

func (r *ProfileRepository) GetProfileByEmail(email string) (Profile, error) {
	var profile Profile
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err == badger.ErrKeyNotFound {
			return errors.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		profile, err = getProfile(txn, string(id))
		return err
	})
	return profile, err
}

// GetProfiles resolves several profiles at once, unknown ids are left out of the map.
func (r *ProfileRepository) GetProfiles(ids []string) (map[string]Profile, error) {
	profiles := make(map[string]Profile, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, ok := profiles[id]; ok {
				continue
			}
			profile, err := getProfile(txn, id)
			if err == errors.ErrProfileNotFound {
				continue
			}
			if err != nil {
				return err
			}
			profiles[id] = profile
		}
		return nil
	})
	return profiles, err
}

func (r *ProfileRepository) AddMember(organizationID, profileID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := getProfile(txn, profileID); err != nil {
			return err
		}
		return txn.Set(memberKey(organizationID, profileID), nil)
	})
}

func (r *ProfileRepository) IsMember(organizationID, profileID string) (bool, error) {
	var member bool
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(organizationID, profileID))
		switch err {
		case nil:
			member = true
			return nil
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	return member, err
}

func getProfile(txn *badger.Txn, id string) (Profile, error) {
	item, err := txn.Get(profileKey(id))
	if err == badger.ErrKeyNotFound {
		return Profile{}, errors.ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	var disk diskProfile
	if err := item.Value(func(val []byte) error {
		return unmarshal(val, &disk)
	}); err != nil {
		return Profile{}, err
	}
	return toProfile(disk), nil
}

func fromProfile(p Profile) diskProfile {
	return diskProfile{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Roles:        p.Roles,
		CreatedAt:    p.CreatedAt.UnixNano(),
	}
}

func toProfile(d diskProfile) Profile {
	return Profile{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		CreatedAt:    time.Unix(0, d.CreatedAt).UTC(),
	}
}

// DecodeProfile reads a raw profile value, for inspection tooling.
func DecodeProfile(val []byte) (Profile, error) {
	var disk diskProfile
	if err := unmarshal(val, &disk); err != nil {
		return Profile{}, err
	}
	return toProfile(disk), nil
}
