package task

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Task is the central entity of the tracker. OwnerID is set at creation
// and never changes; StatusID and PriorityID must always reference an
// entry in the metadata registry.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	OwnerID     string     `gorm:"index;not null;type:text" json:"owner_id"`
	Title       string     `gorm:"not null;type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StatusID    string     `gorm:"not null;type:text" json:"status_id"`
	PriorityID  string     `gorm:"not null;type:text" json:"priority_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        TagSet     `gorm:"type:text" json:"tags"`
	Version     int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// TagSet is an order-insignificant set of tags, stored as a JSON array
// in a single text column. Normalize before persisting so that equal
// sets compare equal.
type TagSet []string

// NormalizeTags returns a deduplicated, sorted copy of tags with empty
// entries dropped.
func NormalizeTags(tags []string) TagSet {
	seen := make(map[string]struct{}, len(tags))
	out := make(TagSet, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Value implements driver.Valuer for GORM.
func (t TagSet) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for GORM.
func (t *TagSet) Scan(src any) error {
	if src == nil {
		*t = TagSet{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}

	if len(data) == 0 {
		*t = TagSet{}
		return nil
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	*t = NormalizeTags(tags)
	return nil
}

// MarshalJSON renders an empty set as [] instead of null.
func (t TagSet) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
