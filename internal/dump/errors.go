package dump

import "github.com/pkg/errors"

var (
	// ErrBadMagic indicates the file does not start with the dump signature.
	ErrBadMagic = errors.New("dump: not a dump file")

	// ErrVersion indicates an unsupported container version.
	ErrVersion = errors.New("dump: unsupported version")

	// ErrChecksum indicates a frame whose bytes do not match the stored hash.
	ErrChecksum = errors.New("dump: frame checksum mismatch")

	// ErrMissingAttr indicates a required attribute is absent.
	ErrMissingAttr = errors.New("dump: missing attribute")

	// ErrShape indicates datasets and attributes disagree on dimensions.
	ErrShape = errors.New("dump: shape mismatch")

	// ErrTooLarge indicates the decoded dump would not fit in memory.
	ErrTooLarge = errors.New("dump: too large for available memory")
)
