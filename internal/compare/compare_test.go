package compare

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pixelgate/pixelgate/internal/storage"
)

func pngBytes(t *testing.T, width, height int, fill color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	return buf.Bytes()
}

var (
	white   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black   = color.RGBA{A: 0xff}
	magenta = color.RGBA{R: 0xff, B: 0xff, A: 0xff}
)

func newEngine(t *testing.T) Engine {
	t.Helper()

	engine, err := NewEngine(logrus.New(), "pixelmatch")
	require.NoError(t, err)

	return engine
}

func TestPixelmatch_IdenticalImagesMatch(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	img := pngBytes(t, 10, 10, white)

	_, err := store.Write(storage.KindBase, "a.png", img)
	require.NoError(t, err)
	_, err = store.Write(storage.KindCurrent, "a.png", img)
	require.NoError(t, err)

	result, err := newEngine(t).Compare(store, "a.png", Options{DiffColor: magenta})
	require.NoError(t, err)

	require.Equal(t, "a", result.ID)
	require.True(t, result.Match)
	require.Equal(t, ReasonNone, result.Reason)
	require.Zero(t, result.DiffPercentage)

	// No diff artifact on a clean match.
	diffs, err := store.List(storage.KindDiff)
	require.NoError(t, err)
	require.Empty(t, diffs)
}

func TestPixelmatch_DifferentImagesFail(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()

	_, err := store.Write(storage.KindBase, "a.png", pngBytes(t, 10, 10, white))
	require.NoError(t, err)
	_, err = store.Write(storage.KindCurrent, "a.png", pngBytes(t, 10, 10, black))
	require.NoError(t, err)

	result, err := newEngine(t).Compare(store, "a.png", Options{DiffColor: magenta})
	require.NoError(t, err)

	require.False(t, result.Match)
	require.Equal(t, ReasonPixelDiff, result.Reason)
	require.InDelta(t, 100.0, result.DiffPercentage, 0.01)

	diffs, err := store.List(storage.KindDiff)
	require.NoError(t, err)
	require.Equal(t, []string{"a.png"}, diffs)
}

func TestPixelmatch_ThresholdAllowsSmallDiffs(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()

	base := image.NewRGBA(image.Rect(0, 0, 10, 10))
	current := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			base.SetRGBA(x, y, white)
			current.SetRGBA(x, y, white)
		}
	}
	current.SetRGBA(0, 0, black) // 1 of 100 pixels

	encode := func(img image.Image) []byte {
		buf := &bytes.Buffer{}
		require.NoError(t, png.Encode(buf, img))
		return buf.Bytes()
	}

	_, err := store.Write(storage.KindBase, "a.png", encode(base))
	require.NoError(t, err)
	_, err = store.Write(storage.KindCurrent, "a.png", encode(current))
	require.NoError(t, err)

	result, err := newEngine(t).Compare(store, "a.png", Options{Threshold: 2.0, DiffColor: magenta})
	require.NoError(t, err)

	require.True(t, result.Match)
	require.InDelta(t, 1.0, result.DiffPercentage, 0.01)

	// A diff artifact is still written because at least one pixel differs.
	diffs, err := store.List(storage.KindDiff)
	require.NoError(t, err)
	require.Equal(t, []string{"a.png"}, diffs)
}

func TestPixelmatch_MissingArtifacts(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	store := storage.NewMemory()
	_, err := store.Write(storage.KindCurrent, "a.png", pngBytes(t, 4, 4, white))
	require.NoError(t, err)

	result, err := engine.Compare(store, "a.png", Options{})
	require.NoError(t, err)
	require.False(t, result.Match)
	require.Equal(t, ReasonMissingBase, result.Reason)

	store = storage.NewMemory()
	_, err = store.Write(storage.KindBase, "a.png", pngBytes(t, 4, 4, white))
	require.NoError(t, err)

	result, err = engine.Compare(store, "a.png", Options{})
	require.NoError(t, err)
	require.False(t, result.Match)
	require.Equal(t, ReasonMissingCurrent, result.Reason)
}

func TestPixelmatch_PadsDimensionMismatch(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()

	_, err := store.Write(storage.KindBase, "a.png", pngBytes(t, 10, 10, white))
	require.NoError(t, err)
	_, err = store.Write(storage.KindCurrent, "a.png", pngBytes(t, 10, 12, white))
	require.NoError(t, err)

	result, err := newEngine(t).Compare(store, "a.png", Options{DiffColor: magenta})
	require.NoError(t, err)

	// The two extra rows diff against padding, so a layout shift still
	// fails the comparison.
	require.False(t, result.Match)
	require.Equal(t, ReasonPixelDiff, result.Reason)
	require.Greater(t, result.DiffPercentage, 0.0)
}

type failingEngine struct{}

func (failingEngine) Name() string { return "failing" }

func (failingEngine) Compare(storage.Store, string, Options) (*Result, error) {
	return nil, errors.New("corrupt image data")
}

func TestRun_ClassifiesFileSets(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	img := pngBytes(t, 4, 4, white)

	_, err := store.Write(storage.KindCurrent, "a.png", img)
	require.NoError(t, err)
	_, err = store.Write(storage.KindCurrent, "b.png", img)
	require.NoError(t, err)
	_, err = store.Write(storage.KindBase, "b.png", img)
	require.NoError(t, err)
	_, err = store.Write(storage.KindBase, "c.png", img)
	require.NoError(t, err)

	results, err := Run(logrus.New(), store, newEngine(t), RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, "a", results[0].ID)
	require.Equal(t, ReasonMissingBase, results[0].Reason)

	require.Equal(t, "b", results[1].ID)
	require.True(t, results[1].Match)

	require.Equal(t, "c", results[2].ID)
	require.Equal(t, ReasonMissingCurrent, results[2].Reason)
}

func TestRun_PerArtifactThresholdOverride(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()

	_, err := store.Write(storage.KindBase, "a.png", pngBytes(t, 10, 10, white))
	require.NoError(t, err)
	_, err = store.Write(storage.KindCurrent, "a.png", pngBytes(t, 10, 10, black))
	require.NoError(t, err)

	results, err := Run(logrus.New(), store, newEngine(t), RunOptions{
		Options:    Options{Threshold: 0, DiffColor: magenta},
		Thresholds: map[string]float64{"a.png": 100},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Match, "per-case override should allow the diff")
}

func TestRun_EngineErrorIsIsolated(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	img := pngBytes(t, 4, 4, white)

	_, err := store.Write(storage.KindCurrent, "a.png", img)
	require.NoError(t, err)
	_, err = store.Write(storage.KindBase, "a.png", img)
	require.NoError(t, err)

	results, err := Run(logrus.New(), store, failingEngine{}, RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, ReasonError, results[0].Reason)
	require.Contains(t, results[0].Error, "corrupt image data")
}

func TestNewEngine_Unknown(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(logrus.New(), "ssim")
	require.ErrorIs(t, err, errUnknownEngine)
}
