package resources

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"sync"

	"fyne.io/fyne/v2"
)

const iconDir = "icons/"

// Bundled tray icons.
const (
	PresentIcon = "present.png"
	AwayIcon    = "away.png"
)

//go:embed icons/*.png
var iconFS embed.FS

var iconCache sync.Map

// Icon is a decoded tray image. It is immutable once loaded and may be
// shared freely between goroutines. Resource is what the tray shows; Pix,
// Width and Height are the decoded pixels, kept so a corrupt asset fails at
// startup rather than in the tray. Pix holds RGBA samples, four bytes per
// pixel, row-major.
type Icon struct {
	Name     string
	Width    int
	Height   int
	Pix      []byte
	Resource fyne.Resource
}

// TrayIcon returns the decoded icon for the given embedded file.
func TrayIcon(fileName string) (*Icon, error) {
	path := iconDir + fileName
	if cached, ok := iconCache.Load(path); ok {
		return cached.(*Icon), nil
	}

	data, err := iconFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load icon %s: %w", path, err)
	}

	icon, err := LoadIcon(path, data)
	if err != nil {
		return nil, err
	}
	actual, _ := iconCache.LoadOrStore(path, icon)
	return actual.(*Icon), nil
}

// MustTrayIcon returns the decoded icon or panics on error.
func MustTrayIcon(fileName string) *Icon {
	icon, err := TrayIcon(fileName)
	if err != nil {
		panic(err)
	}
	return icon
}

// LoadIcon decodes an encoded raster image into an RGBA icon.
func LoadIcon(name string, data []byte) (*Icon, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", name, err)
	}

	bounds := decoded.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("decode icon %s: empty image", name)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), decoded, bounds.Min, draw.Src)

	return &Icon{
		Name:     name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Pix:      rgba.Pix,
		Resource: fyne.NewStaticResource(name, data),
	}, nil
}
