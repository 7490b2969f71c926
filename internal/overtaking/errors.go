package overtaking

import (
	"fmt"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// ErrUnknownStatus is returned when the machine holds a status outside its
// closed set. It wraps lighting.ErrInvariantViolation.
var ErrUnknownStatus = fmt.Errorf("overtaking: unknown status: %w", lighting.ErrInvariantViolation)
