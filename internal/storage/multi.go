package storage

import (
	"errors"

	"github.com/san-kum/boxsim/internal/dynamo"
)

// Multi fans every step out to several outputs in order. Emit stops at the
// first failing output.
type Multi []dynamo.Output

func (m Multi) Emit(step int, t float64, e dynamo.Ensemble) error {
	for _, out := range m {
		if err := out.Emit(step, t, e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every output and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, out := range m {
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
