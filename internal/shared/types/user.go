package types

import (
	"slices"
	"strconv"
	"time"
)

// UserID identifies an OS user
type UserID int32

// NoUser is the sentinel for calls made without a user context.
// Ability enablement checks for NoUser succeed without an overlay.
const NoUser UserID = -1

// ParseUserID parses a decimal user id
func ParseUserID(s string) (UserID, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return UserID(v), nil
}

// String returns the decimal form of the id
func (u UserID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// UserOverlay holds per-user state of a bundle
type UserOverlay struct {
	User              UserID    `json:"user"`
	Enabled           bool      `json:"enabled"`
	DisabledAbilities []string  `json:"disabled_abilities,omitempty"`
	InstallTime       time.Time `json:"install_time"`
	UpdateTime        time.Time `json:"update_time"`
	UID               int32     `json:"uid"`
	GIDs              []int32   `json:"gids,omitempty"`
	AccessTokenID     string    `json:"access_token_id,omitempty"`
}

// Clone returns a deep copy of the overlay
func (o *UserOverlay) Clone() UserOverlay {
	out := *o
	out.DisabledAbilities = slices.Clone(o.DisabledAbilities)
	out.GIDs = slices.Clone(o.GIDs)
	return out
}
