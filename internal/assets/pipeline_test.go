package assets_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"

	"talisman/internal/assets"
	"talisman/internal/bundle"
	"talisman/internal/dat"
	"talisman/internal/imaging"
)

// fakeIndex satisfies assets.Index from in-memory rows.
type fakeIndex struct {
	bases   []dat.BaseItemType
	uniques []dat.UniqueStashLayout
	words   []dat.Word
	vis     []dat.ItemVisualIdentity
	files   map[string][]byte

	tableErr   error
	fileErr    error
	tableReads int
}

func (f *fakeIndex) BaseItemTypes(context.Context) ([]dat.BaseItemType, error) {
	f.tableReads++
	return f.bases, f.tableErr
}

func (f *fakeIndex) UniqueStashLayouts(context.Context) ([]dat.UniqueStashLayout, error) {
	f.tableReads++
	return f.uniques, f.tableErr
}

func (f *fakeIndex) Words(context.Context) ([]dat.Word, error) {
	f.tableReads++
	return f.words, f.tableErr
}

func (f *fakeIndex) ItemVisualIdentities(context.Context) ([]dat.ItemVisualIdentity, error) {
	f.tableReads++
	return f.vis, f.tableErr
}

func (f *fakeIndex) ReadByPath(_ context.Context, path string) ([]byte, error) {
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bundle.ErrNotExist, path)
	}
	return data, nil
}

type skipEvent struct {
	reason assets.SkipReason
	id     string
	name   string
}

// recordingReporter captures pipeline events for assertions.
type recordingReporter struct {
	skips   []skipEvent
	written []string
	total   int
}

func (r *recordingReporter) RecordSkipped(_ context.Context, file *assets.File, reason assets.SkipReason, _ error) {
	r.skips = append(r.skips, skipEvent{reason: reason, id: file.ID.String(), name: file.Name.String()})
}

func (r *recordingReporter) RecordWritten(_ context.Context, file *assets.File, path string) {
	r.written = append(r.written, path)
}

func (r *recordingReporter) RunCompleted(_ context.Context, total int) {
	r.total = total
}

func (r *recordingReporter) skipsFor(reason assets.SkipReason) []skipEvent {
	var out []skipEvent
	for _, s := range r.skips {
		if s.reason == reason {
			out = append(out, s)
		}
	}
	return out
}

// solidPNG renders a 2x2 image of one color.
func solidPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// gemIndex is a baseline fixture: one base gem with a resolvable, canonical
// visual identity.
func gemIndex(t *testing.T) *fakeIndex {
	return &fakeIndex{
		bases: []dat.BaseItemType{{
			ID:             dat.NewString("Metadata/Items/Gems/SkillGemVaalHaste"),
			Name:           dat.NewString("Vaal Haste"),
			VisualIdentity: 0,
		}},
		vis: []dat.ItemVisualIdentity{{
			ID:      dat.NewString("VaalHasteGem"),
			DDSFile: dat.NewString("Art/2DItems/Gems/VaalHaste.dds"),
		}},
		files: map[string][]byte{
			"Art/2DItems/Gems/VaalHaste.dds": solidPNG(t, red),
		},
	}
}

func webpColorAt(t *testing.T, path string, x, y int) color.Color {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img.At(x, y)
}

func TestEndToEndBaseRecord(t *testing.T) {
	out := t.TempDir()
	reporter := &recordingReporter{}

	total, err := assets.New(gemIndex(t), out, assets.WithReporter(reporter)).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 1 || reporter.total != 1 {
		t.Fatalf("total=%d reported=%d", total, reporter.total)
	}

	target := filepath.Join(out, "Vaal Haste.webp")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("output file: %v", err)
	}
	r, _, _, _ := webpColorAt(t, target, 0, 0).RGBA()
	if r == 0 {
		t.Fatal("expected red source pixels in output")
	}
}

func TestNoSelectorsSelectsNothing(t *testing.T) {
	out := t.TempDir()
	total, err := assets.New(gemIndex(t), out).Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 0 {
		t.Fatalf("total: %d", total)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("unexpected output files: %d", len(entries))
	}
}

func TestSelectorsAreORed(t *testing.T) {
	idx := gemIndex(t)
	idx.bases = append(idx.bases, dat.BaseItemType{
		ID:             dat.NewString("Metadata/Items/Belts/BeltLeather"),
		Name:           dat.NewString("Leather Belt"),
		VisualIdentity: 1,
	}, dat.BaseItemType{
		ID:             dat.NewString("Metadata/Items/Rings/RingGold"),
		Name:           dat.NewString("Gold Ring"),
		VisualIdentity: 1,
	})
	idx.vis = append(idx.vis, dat.ItemVisualIdentity{
		ID:      dat.NewString("Shared"),
		DDSFile: dat.NewString("Art/2DItems/Gems/VaalHaste.dds"),
	})

	// Overlapping selectors: the gem matches both the prefix selector and
	// the kind selector, but is still written exactly once.
	total, err := assets.New(idx, t.TempDir()).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Select(assets.IDPrefix("Metadata/Items/Belts")).
		Select(assets.KindIs(assets.KindBase)).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 3 {
		t.Fatalf("total: %d", total)
	}
}

func TestAlternateArtNeverWritten(t *testing.T) {
	idx := gemIndex(t)
	idx.vis[0].IsAlternateArt = true

	out := t.TempDir()
	reporter := &recordingReporter{}
	total, err := assets.New(idx, out, assets.WithReporter(reporter)).
		Select(assets.MatcherFunc(func(*assets.File) bool { return true })).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 0 {
		t.Fatalf("total: %d", total)
	}
	if len(reporter.skipsFor(assets.SkipAlternateArt)) != 1 {
		t.Fatalf("skips: %+v", reporter.skips)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatal("alternate art must not be written even when every selector matches")
	}
}

func TestUniqueRecordsResolveThroughWordsAndVis(t *testing.T) {
	idx := gemIndex(t)
	idx.words = []dat.Word{{Text: dat.NewString("Kaom's Heart")}}
	idx.uniques = []dat.UniqueStashLayout{{Words: 0, VisualIdentity: 0}}

	out := t.TempDir()
	total, err := assets.New(idx, out).
		Select(assets.KindIs(assets.KindUnique)).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 1 {
		t.Fatalf("total: %d", total)
	}
	if _, err := os.Stat(filepath.Join(out, "Kaom's Heart.webp")); err != nil {
		t.Fatalf("unique output: %v", err)
	}
}

func TestUniqueDanglingLookupsSkipNotAbort(t *testing.T) {
	idx := gemIndex(t)
	idx.words = []dat.Word{{Text: dat.NewString("Kaom's Heart")}}
	idx.uniques = []dat.UniqueStashLayout{
		{Words: 99, VisualIdentity: 0}, // missing word
		{Words: 0, VisualIdentity: 77}, // missing visual identity
		{Words: 0, VisualIdentity: 0},  // resolvable
	}

	reporter := &recordingReporter{}
	total, err := assets.New(idx, t.TempDir(), assets.WithReporter(reporter)).
		Select(assets.KindIs(assets.KindUnique)).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 1 {
		t.Fatalf("total: %d", total)
	}
	if len(reporter.skipsFor(assets.SkipMissingWord)) != 1 {
		t.Fatalf("missing word skips: %+v", reporter.skips)
	}
	if len(reporter.skipsFor(assets.SkipMissingVisualIdentity)) != 1 {
		t.Fatalf("missing vis skips: %+v", reporter.skips)
	}
}

func TestMissingVisualIdentityWarnsOnceAndContinues(t *testing.T) {
	idx := gemIndex(t)
	idx.bases = append([]dat.BaseItemType{{
		ID:             dat.NewString("Metadata/Items/Gems/SkillGemBroken"),
		Name:           dat.NewString("Broken Gem"),
		VisualIdentity: 42,
	}}, idx.bases...)

	reporter := &recordingReporter{}
	total, err := assets.New(idx, t.TempDir(), assets.WithReporter(reporter)).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 1 {
		t.Fatalf("later records must still process, total=%d", total)
	}

	skips := reporter.skipsFor(assets.SkipMissingVisualIdentity)
	if len(skips) != 1 {
		t.Fatalf("want exactly one diagnostic, got %+v", reporter.skips)
	}
	if skips[0].id != "Metadata/Items/Gems/SkillGemBroken" {
		t.Fatalf("diagnostic names wrong record: %+v", skips[0])
	}
}

func TestUndecodableNameSkips(t *testing.T) {
	idx := gemIndex(t)
	idx.bases[0].Name = dat.String{}

	reporter := &recordingReporter{}
	total, err := assets.New(idx, t.TempDir(), assets.WithReporter(reporter)).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 0 || len(reporter.skipsFor(assets.SkipInvalidName)) != 1 {
		t.Fatalf("total=%d skips=%+v", total, reporter.skips)
	}
}

func TestUndecodableSourcePathSkips(t *testing.T) {
	idx := gemIndex(t)
	idx.vis[0].DDSFile = dat.String{}

	reporter := &recordingReporter{}
	total, err := assets.New(idx, t.TempDir(), assets.WithReporter(reporter)).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 0 || len(reporter.skipsFor(assets.SkipInvalidSourcePath)) != 1 {
		t.Fatalf("total=%d skips=%+v", total, reporter.skips)
	}
}

func TestMissingAndUndecodableImagesSkip(t *testing.T) {
	idx := gemIndex(t)
	idx.bases = append(idx.bases, dat.BaseItemType{
		ID:             dat.NewString("Metadata/Items/Gems/SkillGemGarbage"),
		Name:           dat.NewString("Garbage Gem"),
		VisualIdentity: 1,
	})
	idx.vis = append(idx.vis, dat.ItemVisualIdentity{
		ID:      dat.NewString("GarbageGem"),
		DDSFile: dat.NewString("Art/2DItems/Gems/Garbage.dds"),
	})
	idx.files["Art/2DItems/Gems/Garbage.dds"] = []byte("not an image")
	delete(idx.files, "Art/2DItems/Gems/VaalHaste.dds")

	reporter := &recordingReporter{}
	total, err := assets.New(idx, t.TempDir(), assets.WithReporter(reporter)).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 0 {
		t.Fatalf("total: %d", total)
	}
	if len(reporter.skipsFor(assets.SkipMissingImage)) != 1 {
		t.Fatalf("missing image skips: %+v", reporter.skips)
	}
	if len(reporter.skipsFor(assets.SkipImageDecode)) != 1 {
		t.Fatalf("decode skips: %+v", reporter.skips)
	}
}

func TestImageReadFaultIsFatal(t *testing.T) {
	idx := gemIndex(t)
	idx.fileErr = errors.New("connection reset")

	_, err := assets.New(idx, t.TempDir()).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err == nil {
		t.Fatal("an I/O fault that is not a miss must abort the run")
	}
}

func TestMissingTableFailsRunBeforeOutput(t *testing.T) {
	idx := gemIndex(t)
	idx.tableErr = errors.New("index: table does not exist: Words")

	out := t.TempDir()
	_, err := assets.New(idx, out).
		Select(assets.IDPrefix("Metadata")).
		Execute(context.Background())
	if err == nil {
		t.Fatal("expected fatal error")
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("no files may be written on a fatal setup error, got %d", len(entries))
	}
}

func TestBadOutDirFailsBeforeAnyWork(t *testing.T) {
	idx := gemIndex(t)

	if _, err := assets.New(idx, filepath.Join(t.TempDir(), "missing")).Execute(context.Background()); err == nil {
		t.Fatal("expected error for missing out dir")
	}
	if idx.tableReads != 0 {
		t.Fatalf("tables must not be read before the out dir check, reads=%d", idx.tableReads)
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := assets.New(idx, file).Execute(context.Background()); err == nil {
		t.Fatal("expected error for non-directory out path")
	}
}

func TestCollisionLastWriteWins(t *testing.T) {
	idx := gemIndex(t)
	// A second record with the same display name but blue source art,
	// processed after the red one.
	idx.bases = append(idx.bases, dat.BaseItemType{
		ID:             dat.NewString("Metadata/Items/Gems/SkillGemVaalHasteDuplicate"),
		Name:           dat.NewString("Vaal Haste"),
		VisualIdentity: 1,
	})
	idx.vis = append(idx.vis, dat.ItemVisualIdentity{
		ID:      dat.NewString("VaalHasteGemDuplicate"),
		DDSFile: dat.NewString("Art/2DItems/Gems/VaalHasteBlue.dds"),
	})
	idx.files["Art/2DItems/Gems/VaalHasteBlue.dds"] = solidPNG(t, blue)

	out := t.TempDir()
	total, err := assets.New(idx, out).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// Both records write; the later one owns the final bytes.
	if total != 2 {
		t.Fatalf("total: %d", total)
	}
	_, _, b, _ := webpColorAt(t, filepath.Join(out, "Vaal Haste.webp"), 0, 0).RGBA()
	if b == 0 {
		t.Fatal("expected the later (blue) record's bytes on disk")
	}
}

func TestPostprocessMatchesIndependentlyAndComposesInOrder(t *testing.T) {
	idx := gemIndex(t)
	idx.bases = append(idx.bases, dat.BaseItemType{
		ID:             dat.NewString("Metadata/Items/Belts/BeltLeather"),
		Name:           dat.NewString("Leather Belt"),
		VisualIdentity: 0,
	})

	var order []string
	stamp := func(label string, c color.NRGBA) assets.Transform {
		return assets.TransformFunc(func(img *imaging.Image) error {
			order = append(order, label)
			img.NRGBA().SetNRGBA(0, 0, c)
			return nil
		})
	}

	out := t.TempDir()
	// Selection comes from the belt prefix for one record and the gem
	// prefix for the other; the postprocess matcher keys on gems only.
	total, err := assets.New(idx, out).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Select(assets.IDPrefix("Metadata/Items/Belts")).
		Postprocess(assets.IDPrefix("Metadata/Items/Gems"), stamp("first", red)).
		Postprocess(assets.IDPrefix("Metadata/Items/Gems"), stamp("second", blue)).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 2 {
		t.Fatalf("total: %d", total)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("transform order: %v", order)
	}

	// The later transform's stamp survives on the gem; the belt keeps its
	// untouched source pixels.
	_, _, b, _ := webpColorAt(t, filepath.Join(out, "Vaal Haste.webp"), 0, 0).RGBA()
	if b == 0 {
		t.Fatal("second transform should have stamped the gem blue")
	}
	_, _, beltBlue, _ := webpColorAt(t, filepath.Join(out, "Leather Belt.webp"), 0, 0).RGBA()
	if beltBlue != 0 {
		t.Fatal("belt must not be postprocessed")
	}
}

func TestPostprocessFaultSkipsRecordByDefault(t *testing.T) {
	idx := gemIndex(t)
	boom := assets.TransformFunc(func(*imaging.Image) error { return errors.New("boom") })

	reporter := &recordingReporter{}
	total, err := assets.New(idx, t.TempDir(), assets.WithReporter(reporter)).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Postprocess(assets.IDPrefix("Metadata/Items/Gems"), boom).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if total != 0 || len(reporter.skipsFor(assets.SkipPostprocess)) != 1 {
		t.Fatalf("total=%d skips=%+v", total, reporter.skips)
	}
}

func TestPostprocessFaultFatalInStrictMode(t *testing.T) {
	idx := gemIndex(t)
	boom := assets.TransformFunc(func(*imaging.Image) error { return errors.New("boom") })

	_, err := assets.New(idx, t.TempDir(), assets.WithStrictPostprocess()).
		Select(assets.IDPrefix("Metadata/Items/Gems")).
		Postprocess(assets.IDPrefix("Metadata/Items/Gems"), boom).
		Execute(context.Background())
	if err == nil {
		t.Fatal("strict mode must abort the run on a transform fault")
	}
}
