package cart

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Capacity is the largest program image, the memory above 0x200.
const Capacity = 3584

var (
	ErrEmpty    = errors.New("cart: empty program image")
	ErrTooLarge = errors.New("cart: program image larger than 3584 bytes")
)

// Image is a program read into a fixed, zero-padded buffer together with
// the number of bytes that were actually read.
type Image struct {
	Data [Capacity]byte
	Size int
	Name string // base name of the source file without extension, if any
}

// Bytes returns the loaded part of the image.
func (img *Image) Bytes() []byte { return img.Data[:img.Size] }

// Read fills an Image from r. Images longer than Capacity are rejected
// rather than truncated.
func Read(r io.Reader) (*Image, error) {
	img := &Image{}
	n, err := io.ReadFull(r, img.Data[:])
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	case err != nil:
		return nil, fmt.Errorf("cart: read: %w", err)
	default:
		// buffer full: anything left means the image does not fit
		var one [1]byte
		if m, _ := r.Read(one[:]); m > 0 {
			return nil, ErrTooLarge
		}
	}
	if n == 0 {
		return nil, ErrEmpty
	}
	img.Size = n
	return img, nil
}

// Load reads the program file at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() > Capacity {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, st.Size())
	}
	img, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return img, nil
}

// Extensions lists the file suffixes treated as program images.
var Extensions = []string{".ch8", ".c8"}

// Find returns the program images below dir, sorted by path.
func Find(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if slices.Contains(Extensions, ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}
