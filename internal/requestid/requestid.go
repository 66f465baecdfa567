// Package requestid generates identifiers for diarization requests.
package requestid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New creates a new unique request ID.
// Format: dia-<timestamp>-<random>
// Example: dia-1701432000-a1b2c3d4e5f6
func New() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("dia-%d-%s", time.Now().Unix(), random[:12])
}
