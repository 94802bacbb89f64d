package cart

import (
	"fmt"
	"hash/crc32"
)

// Info summarises an image for logs.
type Info struct {
	Name  string
	Size  int
	Words int
	CRC32 uint32
	// Extended lists the distinct SUPER-CHIP/XO-CHIP instructions found at
	// even offsets. The interpreter treats them as unknown.
	Extended []string
}

func Describe(img *Image) Info {
	data := img.Bytes()
	info := Info{
		Name:  img.Name,
		Size:  img.Size,
		Words: img.Size / 2,
		CRC32: crc32.ChecksumIEEE(data),
	}
	seen := map[string]bool{}
	for off := 0; off+1 < len(data); off += 2 {
		word := uint16(data[off])<<8 | uint16(data[off+1])
		if name := extensionName(word); name != "" && !seen[name] {
			seen[name] = true
			info.Extended = append(info.Extended, name)
		}
	}
	return info
}

func (i Info) String() string {
	s := fmt.Sprintf("%q size=%dB words=%d crc32=%08x", i.Name, i.Size, i.Words, i.CRC32)
	if len(i.Extended) > 0 {
		s += fmt.Sprintf(" extended=%v", i.Extended)
	}
	return s
}

func extensionName(word uint16) string {
	switch {
	case word&0xFFF0 == 0x00C0:
		return "SCD"
	case word&0xFFF0 == 0x00D0:
		return "SCU"
	case word == 0x00FB:
		return "SCR"
	case word == 0x00FC:
		return "SCL"
	case word == 0x00FD:
		return "EXIT"
	case word == 0x00FE:
		return "LOW"
	case word == 0x00FF:
		return "HIGH"
	case word == 0xF000:
		return "LD I, long"
	case word&0xF0FF == 0xF030:
		return "LD HF"
	case word&0xF0FF == 0xF075:
		return "LD R"
	case word&0xF0FF == 0xF085:
		return "LD Vx, R"
	}
	return ""
}
