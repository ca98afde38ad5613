package validation

import "github.com/steveyegge/beans/internal/types"

// ValidatePriority checks the P0..P4 range (0 is most urgent).
func ValidatePriority(p int) error {
	if p < 0 || p > 4 {
		return types.E(types.KindValidation, "invalid priority %d: must be in range 0-4 (P0-P4)", p)
	}
	return nil
}
