package dump

import (
	"os"

	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
)

// CheckMemory reads only the header of path and fails with ErrTooLarge when
// the datasets would take more than half of the physical memory. Hosts that
// do not report their memory size are not checked.
func CheckMemory(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}

	total := memory.TotalMemory()
	if total == 0 {
		return h, nil
	}
	if need := h.DecodedSize(); need > total/2 {
		return h, errors.Wrapf(ErrTooLarge, "%s needs %d MiB, host has %d MiB", path, need>>20, total>>20)
	}
	return h, nil
}
