package cli

import "github.com/matzehuels/pageprint/pkg/errors"

// errorf reports bad command-line input.
func errorf(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}
