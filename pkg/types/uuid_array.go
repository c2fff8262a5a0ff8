package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps a Postgres uuid[] column onto a validated slice of UUIDs.
// An empty (or NULL) array is meaningful to the pricing engine: it marks an
// applicability dimension as a wildcard.
type UUIDArray []uuid.UUID

// Value implements driver.Valuer.
func (a UUIDArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	raw := make(pq.StringArray, 0, len(a))
	for _, id := range a {
		raw = append(raw, id.String())
	}
	return raw.Value()
}

// Scan implements sql.Scanner.
func (a *UUIDArray) Scan(value interface{}) error {
	if value == nil {
		*a = UUIDArray{}
		return nil
	}

	var raw pq.StringArray
	if err := raw.Scan(value); err != nil {
		return err
	}

	out := make(UUIDArray, 0, len(raw))
	for _, entry := range raw {
		parsed, err := uuid.Parse(entry)
		if err != nil {
			return fmt.Errorf("parsing uuid array element %q: %w", entry, err)
		}
		out = append(out, parsed)
	}
	*a = out
	return nil
}

// GormDataType tells GORM which column type backs the slice.
func (UUIDArray) GormDataType() string {
	return "uuid[]"
}
