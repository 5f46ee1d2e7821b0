package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

var errSparseUnsupported = errors.New("sparse copy not supported")

// copyContents copies in to out hole-aware when the filesystem supports
// SEEK_DATA, so sparse files keep their on-disk layout. Filesystems without
// extent seeking get a plain copy.
func copyContents(ctx context.Context, in, out *os.File) error {
	err := copySparse(ctx, in, out)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errSparseUnsupported) {
		return err
	}

	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("could not rewind source: %w", err)
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("could not rewind destination: %w", err)
	}
	_, err = io.Copy(out, in)
	return err
}

// copySparse walks the source's data extents with SEEK_DATA/SEEK_HOLE and
// only writes those, leaving the holes as holes in the destination.
func copySparse(ctx context.Context, in, out *os.File) error {
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("could not stat source: %w", err)
	}

	size := info.Size()
	if size == 0 {
		return nil
	}

	fd := int(in.Fd())

	// Probe for SEEK_DATA support first.
	if _, err := unix.Seek(fd, 0, unix.SEEK_DATA); err != nil {
		if seekDataUnsupported(err) {
			return errSparseUnsupported
		}
		if errors.Is(err, syscall.ENXIO) {
			// The whole file is one hole.
			return out.Truncate(size)
		}
		return err
	}
	if _, err := unix.Seek(fd, 0, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, 1<<20)
	offset := int64(0)
	for offset < size {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := unix.Seek(fd, offset, unix.SEEK_DATA)
		if err != nil {
			if errors.Is(err, syscall.ENXIO) {
				break
			}
			return err
		}
		hole, err := unix.Seek(fd, data, unix.SEEK_HOLE)
		if err != nil {
			return err
		}
		if hole > size {
			hole = size
		}

		if err := copyExtent(in, out, data, hole-data, buf); err != nil {
			return err
		}
		offset = hole
	}

	// The virtual size has to survive even when the tail is a hole.
	if err := out.Truncate(size); err != nil {
		return fmt.Errorf("could not set destination size: %w", err)
	}

	return nil
}

func copyExtent(in, out *os.File, offset, length int64, buf []byte) error {
	if _, err := in.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek source extent: %w", err)
	}
	if _, err := out.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek destination extent: %w", err)
	}

	for length > 0 {
		chunk := int64(len(buf))
		if length < chunk {
			chunk = length
		}
		n, err := io.ReadFull(in, buf[:chunk])
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			length -= int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
	}

	return nil
}

func seekDataUnsupported(err error) bool {
	return errors.Is(err, syscall.ENOSYS) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EOPNOTSUPP)
}
