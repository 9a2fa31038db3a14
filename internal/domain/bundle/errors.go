package bundle

import "errors"

var (
	ErrInvalidModule      = errors.New("invalid module")
	ErrDuplicateModule    = errors.New("duplicate module")
	ErrDuplicateAbility   = errors.New("duplicate ability")
	ErrModuleNotFound     = errors.New("module not found")
	ErrAbilityNotFound    = errors.New("ability not found")
	ErrUserOverlayMissing = errors.New("user overlay missing")
)
