package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talisman/internal/testsupport"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeBundleFixture lays out a minimal extracted bundle tree: the four item
// tables plus one PNG standing in for gem art. It returns the tree root.
func writeBundleFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	base := testsupport.NewTableBuilder(0x18)
	base.Row().
		PutString(0x00, "Metadata/Items/Gems/SkillGemVaalHaste").
		PutString(0x08, "Vaal Haste").
		PutU64(0x10, 0)

	uniques := testsupport.NewTableBuilder(0x10)
	uniques.Row().
		PutU64(0x00, 0).
		PutU64(0x08, 0)

	words := testsupport.NewTableBuilder(0x08)
	words.Row().PutString(0x00, "Kaom's Heart")

	vis := testsupport.NewTableBuilder(0x11)
	vis.Row().
		PutString(0x00, "VaalHasteGem").
		PutString(0x08, "Art/2DItems/Gems/VaalHaste.dds").
		PutBool(0x10, false)

	writeFixtureFile(t, root, "Data/BaseItemTypes.dat64", base.Bytes())
	writeFixtureFile(t, root, "Data/UniqueStashLayout.dat64", uniques.Bytes())
	writeFixtureFile(t, root, "Data/Words.dat64", words.Bytes())
	writeFixtureFile(t, root, "Data/ItemVisualIdentity.dat64", vis.Bytes())
	writeFixtureFile(t, root, "Art/2DItems/Gems/VaalHaste.dds", fixturePNG(t))

	return root
}

func writeFixtureFile(t *testing.T, root, name string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fixturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 60, B: 20, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
