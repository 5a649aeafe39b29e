package payment

import (
	"fmt"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const referenceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newReferenceGenerator returns a generator of SHOP-<unix ms>-<6 base36 chars>
// merchant references.
func newReferenceGenerator(now func() time.Time) (func() string, error) {
	suffix, err := nanoid.CustomASCII(referenceAlphabet, 6)
	if err != nil {
		return nil, fmt.Errorf("init reference generator: %w", err)
	}
	return func() string {
		return fmt.Sprintf("SHOP-%d-%s", now().UnixMilli(), suffix())
	}, nil
}
