package artifact

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/zeroshade/sgvdesk/internal/monitoring"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// ParseFormat accepts png or json, defaulting to png.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatPNG
}

const qrSize = 320

// Writer stores combine artifacts as SGV_<serial>.png, or .json when the
// QR image is disabled or cannot be produced.
type Writer struct {
	Dir    string
	Format Format

	encode func(content string) ([]byte, error)
}

func NewWriter(dir string, format Format) *Writer {
	return &Writer{Dir: dir, Format: format, encode: encodeQR}
}

func encodeQR(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, qrSize)
}

// Write returns the path of the file actually written.
func (w *Writer) Write(p Payload) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Join(w.Dir, "SGV_"+p.CombinedSerial)

	if w.Format == FormatPNG {
		path, err := w.writeQR(base, p)
		if err == nil {
			return path, nil
		}
		monitoring.TrackArtifactFallback()
		slog.Warn("qr artifact unavailable, writing json instead", "serial", p.CombinedSerial, "error", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	path := base + ".json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) writeQR(base string, p Payload) (string, error) {
	content, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	png, err := w.encode(string(content))
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	path := base + ".png"
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes an artifact. A file that is already gone is not an error.
func (w *Writer) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
