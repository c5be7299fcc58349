package assets

import (
	"image"
	_ "image/png"
	"io"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// TextureLoader loads textures/<name>.png as ebiten images.
type TextureLoader = Loader[*ebiten.Image]

// NewTextureLoader reads PNGs from the textures directory of fsys.
func NewTextureLoader(fsys fs.FS, log *zap.Logger) *TextureLoader {
	return NewLoader(fsys, "textures", ".png", decodeTexture, releaseTexture, log)
}

func decodeTexture(r io.Reader) (*ebiten.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

func releaseTexture(img *ebiten.Image) {
	img.Deallocate()
}
