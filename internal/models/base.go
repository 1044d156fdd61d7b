// Package models defines GORM database models for vagrant state records.
package models

import (
	"crypto/rand"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ULID is the resource id type shared by every state record. Ids sort
// lexicographically by creation time, so listing records by id yields
// insertion order without a separate sequence column.
type ULID ulid.ULID

// entropy is the shared monotonic source for id generation. Monotonic reads
// keep ids strictly increasing within a process even when two records are
// created in the same millisecond.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID generates a resource id for the current time.
func NewULID() ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ULID(ulid.MustNew(ulid.Now(), entropy))
}

// ParseULID parses the canonical 26-character form of a resource id.
func ParseULID(s string) (ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ULID{}, fmt.Errorf("parsing resource id %q: %w", s, err)
	}
	return ULID(id), nil
}

// IsZero reports whether the id is unset.
func (u ULID) IsZero() bool {
	return u == ULID{}
}

// String renders the canonical 26-character form. The zero id renders as
// the empty string rather than a run of zero characters.
func (u ULID) String() string {
	if u.IsZero() {
		return ""
	}
	return ulid.ULID(u).String()
}

// Timestamp returns the creation time encoded in the id.
func (u ULID) Timestamp() time.Time {
	return ulid.Time(ulid.ULID(u).Time())
}

// MarshalText implements encoding.TextMarshaler, which also covers JSON
// encoding. The zero id marshals empty.
func (u ULID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input produces
// the zero id.
func (u *ULID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = ULID{}
		return nil
	}
	id, err := ParseULID(string(text))
	if err != nil {
		return err
	}
	*u = id
	return nil
}

// Value implements driver.Valuer. The zero id stores as NULL.
func (u ULID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.String(), nil
}

// Scan implements sql.Scanner.
func (u *ULID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = ULID{}
		return nil
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into a resource id", src)
}

// GormDataType tells GORM how to store resource ids.
func (ULID) GormDataType() string {
	return "char(26)"
}

// BaseModel provides common fields for all models with a ULID resource id
// as primary key.
type BaseModel struct {
	ResourceID ULID      `gorm:"primarykey;type:char(26)" json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate generates a resource id if not already set.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ResourceID.IsZero() {
		b.ResourceID = NewULID()
	}
	return nil
}

// GetResourceID returns the ULID resource identifier.
func (b *BaseModel) GetResourceID() ULID {
	return b.ResourceID
}
