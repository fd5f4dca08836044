package media

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	apperrors "twitterapi/internal/errors"
)

// Output sizes and content types of stored images.
const (
	AvatarSize     = 250
	TweetImageSize = 350
	AvatarMIME     = "image/png"
	TweetImageMIME = "image/jpeg"
)

const tweetJPEGQuality = 90

// MaxSourcePixels bounds the decoded size of an upload. The header is checked
// before decoding so a small compressed file cannot claim a huge canvas.
const MaxSourcePixels = 4096 * 4096

// ResizeAvatar decodes raw, crops it to a centered square and encodes it as PNG.
func ResizeAvatar(raw []byte) ([]byte, error) {
	return resize(raw, AvatarSize, imaging.PNG)
}

// ResizeTweetImage decodes raw, crops it to a centered square and encodes it as JPEG.
func ResizeTweetImage(raw []byte) ([]byte, error) {
	return resize(raw, TweetImageSize, imaging.JPEG, imaging.JPEGQuality(tweetJPEGQuality))
}

func resize(raw []byte, size int, format imaging.Format, opts ...imaging.EncodeOption) ([]byte, error) {
	if len(raw) == 0 {
		return nil, apperrors.ErrInvalidImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.ErrInvalidImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, apperrors.ErrInvalidImage
	}

	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.ErrInvalidImage
	}

	dst := imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format, opts...); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
