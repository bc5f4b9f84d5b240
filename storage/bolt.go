// Package storage persists claims and integration settings in a local bbolt
// database. Wizard sessions are deliberately not stored here; they live only
// for the duration of one submission.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/finqube/claimflow/dto"
)

const (
	claimsBucket   = "claims"
	settingsBucket = "settings"
)

// ErrNotFound is returned for lookups of records that do not exist.
var ErrNotFound = fmt.Errorf("record not found")

// Store defines the persistence operations the services need.
type Store interface {
	// SaveClaims persists a batch atomically and returns the assigned
	// claim numbers. Either every claim in the batch is stored or none.
	SaveClaims(claims []dto.Claim) ([]string, error)

	// GetClaim retrieves a claim by claim number.
	GetClaim(number string) (*dto.Claim, error)

	// ListClaims returns all claims.
	ListClaims() ([]*dto.Claim, error)

	// ListClaimsByEmployee returns the claims submitted by one employee.
	ListClaimsByEmployee(employeeID string) ([]*dto.Claim, error)

	// SaveSettings stores one settings section as JSON.
	SaveSettings(section string, raw json.RawMessage) error

	// GetSettings retrieves one settings section.
	GetSettings(section string) (json.RawMessage, error)

	// Close closes the underlying database.
	Close() error
}

// BoltStore implements Store using bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(claimsBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveClaims persists a batch in one transaction, assigning sequential claim
// numbers.
func (b *BoltStore) SaveClaims(claims []dto.Claim) ([]string, error) {
	numbers := make([]string, 0, len(claims))
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimsBucket))
		for i := range claims {
			seq, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("claim sequence: %w", err)
			}
			claims[i].ClaimNumber = fmt.Sprintf("CLM-%06d", seq)
			data, err := json.Marshal(claims[i])
			if err != nil {
				return fmt.Errorf("marshaling claim: %w", err)
			}
			if err := bucket.Put([]byte(claims[i].ClaimNumber), data); err != nil {
				return err
			}
			numbers = append(numbers, claims[i].ClaimNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// GetClaim retrieves a claim by claim number.
func (b *BoltStore) GetClaim(number string) (*dto.Claim, error) {
	var claim *dto.Claim
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(claimsBucket)).Get([]byte(number))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, number)
		}
		return json.Unmarshal(data, &claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// ListClaims returns all claims.
func (b *BoltStore) ListClaims() ([]*dto.Claim, error) {
	claims := make([]*dto.Claim, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(claimsBucket)).ForEach(func(k, v []byte) error {
			var claim dto.Claim
			if err := json.Unmarshal(v, &claim); err != nil {
				return fmt.Errorf("unmarshaling claim: %w", err)
			}
			claims = append(claims, &claim)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ListClaimsByEmployee returns the claims submitted by one employee.
func (b *BoltStore) ListClaimsByEmployee(employeeID string) ([]*dto.Claim, error) {
	all, err := b.ListClaims()
	if err != nil {
		return nil, err
	}
	claims := make([]*dto.Claim, 0)
	for _, c := range all {
		if c.EmployeeID == employeeID {
			claims = append(claims, c)
		}
	}
	return claims, nil
}

// SaveSettings stores one settings section as JSON.
func (b *BoltStore) SaveSettings(section string, raw json.RawMessage) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(section), raw)
	})
}

// GetSettings retrieves one settings section.
func (b *BoltStore) GetSettings(section string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(section))
		if data == nil {
			return fmt.Errorf("%w: settings %s", ErrNotFound, section)
		}
		raw = append(raw, data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Close closes the database connection
func (b *BoltStore) Close() error {
	return b.db.Close()
}
