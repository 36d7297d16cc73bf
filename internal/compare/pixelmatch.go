package compare

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/orisano/pixelmatch"
	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/storage"
)

// pixelSensitivity is the per-pixel color distance tolerance passed to the
// matcher; the pass/fail decision uses Options.Threshold on the aggregate
// diff percentage instead.
const pixelSensitivity = 0.1

func init() {
	RegisterEngine("pixelmatch", NewPixelmatch)
}

// pixelmatchEngine compares PNG artifacts pixel by pixel.
type pixelmatchEngine struct {
	log logrus.FieldLogger
}

// NewPixelmatch creates the default pixel comparison engine.
func NewPixelmatch(log logrus.FieldLogger) Engine {
	return &pixelmatchEngine{
		log: log.WithField("component", "pixelmatch_engine"),
	}
}

func (e *pixelmatchEngine) Name() string {
	return "pixelmatch"
}

// Compare diffs the base and current artifact named filename. Images of
// different dimensions are padded to the bounding width/height before
// comparing, so a layout shift surfaces as diffing pixels along the grown
// edge rather than as a hard failure.
func (e *pixelmatchEngine) Compare(store storage.Store, filename string, opts Options) (*Result, error) {
	id := strings.TrimSuffix(filename, filepath.Ext(filename))

	baseData, err := store.Read(storage.KindBase, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return &Result{ID: id, Reason: ReasonMissingBase}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading base artifact: %w", err)
	}

	currentData, err := store.Read(storage.KindCurrent, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return &Result{ID: id, Reason: ReasonMissingCurrent}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading current artifact: %w", err)
	}

	baseImg, err := png.Decode(bytes.NewReader(baseData))
	if err != nil {
		return nil, fmt.Errorf("decoding base artifact: %w", err)
	}

	currentImg, err := png.Decode(bytes.NewReader(currentData))
	if err != nil {
		return nil, fmt.Errorf("decoding current artifact: %w", err)
	}

	baseImg, currentImg = padToCommonBounds(baseImg, currentImg)

	var diffImg image.Image
	mismatched, err := pixelmatch.MatchPixel(
		baseImg,
		currentImg,
		pixelmatch.Threshold(pixelSensitivity),
		pixelmatch.DiffColor(opts.DiffColor),
		pixelmatch.WriteTo(&diffImg),
	)
	if err != nil {
		return nil, fmt.Errorf("matching pixels: %w", err)
	}

	bounds := baseImg.Bounds()
	total := bounds.Dx() * bounds.Dy()

	result := &Result{ID: id}
	if total > 0 {
		result.DiffPercentage = float64(mismatched) / float64(total) * 100
	}

	if mismatched > 0 {
		// Diff artifacts are only worth writing when something changed.
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, diffImg); err != nil {
			return nil, fmt.Errorf("encoding diff artifact: %w", err)
		}

		if _, err := store.Write(storage.KindDiff, filename, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("writing diff artifact: %w", err)
		}
	}

	if result.DiffPercentage <= opts.Threshold {
		result.Match = true
	} else {
		result.Reason = ReasonPixelDiff
	}

	e.log.WithFields(logrus.Fields{
		"artifact": filename,
		"match":    result.Match,
		"diff_pct": result.DiffPercentage,
	}).Debug("compared artifact")

	return result, nil
}

// padToCommonBounds redraws both images onto canvases of the bounding
// max width/height so the matcher sees equal dimensions. Regions present in
// only one image diff against the blank padding of the other.
func padToCommonBounds(a, b image.Image) (image.Image, image.Image) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() == bb.Dx() && ab.Dy() == bb.Dy() {
		return a, b
	}

	width := ab.Dx()
	if bb.Dx() > width {
		width = bb.Dx()
	}

	height := ab.Dy()
	if bb.Dy() > height {
		height = bb.Dy()
	}

	return padImage(a, width, height), padImage(b, width, height)
}

func padImage(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, bounds.Sub(bounds.Min), img, bounds.Min, draw.Src)

	return canvas
}
