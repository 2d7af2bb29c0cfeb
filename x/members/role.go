package members

import (
	"strings"

	"github.com/iov-one/daowallet/errors"
)

// Role of a member, used for permission checks.
type Role int32

const (
	RoleAdmin     Role = 1
	RoleTreasurer Role = 2
	RoleMember    Role = 3
)

// Validate returns an error if this is not one of the known roles.
func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleTreasurer, RoleMember:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "unknown role %d", r)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTreasurer:
		return "treasurer"
	case RoleMember:
		return "member"
	default:
		return "unknown"
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "admin":
		return RoleAdmin, nil
	case "treasurer":
		return RoleTreasurer, nil
	case "member":
		return RoleMember, nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "unknown role %q", s)
	}
}
