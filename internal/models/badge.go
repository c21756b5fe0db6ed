package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

const (
	BadgeAdmin   = "Admin"
	BadgeDev     = "Dev"
	BadgePremium = "Premium"
	BadgeAlphaOG = "AlphaOG"
)

// AssignableBadges is the closed set an admin may grant. Admin itself is
// never assignable through badge assignment.
var AssignableBadges = []string{BadgeDev, BadgePremium, BadgeAlphaOG}

func IsAssignableBadge(badge string) bool {
	for _, b := range AssignableBadges {
		if b == badge {
			return true
		}
	}
	return false
}

// BadgeSet is stored as a comma-joined text column.
type BadgeSet []string

func (b BadgeSet) Contains(badge string) bool {
	for _, v := range b {
		if v == badge {
			return true
		}
	}
	return false
}

func (b BadgeSet) Value() (driver.Value, error) {
	return strings.Join(b, ","), nil
}

func (b *BadgeSet) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*b = BadgeSet{}
		return nil
	default:
		return fmt.Errorf("unsupported badge column type %T", value)
	}
	if raw == "" {
		*b = BadgeSet{}
		return nil
	}
	*b = BadgeSet(strings.Split(raw, ","))
	return nil
}
