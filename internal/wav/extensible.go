package wav

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"
)

// extensibleFmt is the WAVE_FORMAT_EXTENSIBLE fmt chunk up to the first two
// bytes of the SubFormat GUID, which carry the actual format code.
type extensibleFmt struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	ExtSize       uint16
	ValidBits     uint16
	ChannelMask   uint32
	SubFormat     uint16
}

const extensibleFmtSize = 26

// checkExtensiblePCM rejects extensible files whose sub-format is not integer PCM,
// such as IEEE float.
func checkExtensiblePCM(path string) error {
	f, err := os.Open(path) // #nosec G304 - same path Load already opened
	if err != nil {
		return fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	sub, err := extensibleSubFormat(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	if sub != formatPCM {
		return fmt.Errorf("%w: extensible sub-format %#x", ErrUnsupportedEncoding, sub)
	}
	return nil
}

func extensibleSubFormat(r io.Reader) (uint16, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("fmt chunk: %w", err)
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}
		if ch.Size < extensibleFmtSize {
			return 0, fmt.Errorf("extensible fmt chunk is %d bytes", ch.Size)
		}
		var hdr extensibleFmt
		if err := ch.ReadLE(&hdr); err != nil {
			return 0, fmt.Errorf("read fmt chunk: %w", err)
		}
		return hdr.SubFormat, nil
	}
}
