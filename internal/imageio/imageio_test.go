package imageio

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDecodesToBGR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "solid.png")
	writePNG(t, path, img)

	mat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer mat.Close()

	if mat.Rows() != 3 || mat.Cols() != 4 {
		t.Fatalf("got %dx%d, want 4x3", mat.Cols(), mat.Rows())
	}
	if mat.Channels() != 3 {
		t.Fatalf("got %d channels, want 3", mat.Channels())
	}

	// Channel order must be BGR.
	b := mat.GetUCharAt(1, 2*3+0)
	g := mat.GetUCharAt(1, 2*3+1)
	r := mat.GetUCharAt(1, 2*3+2)
	if b != 50 || g != 100 || r != 200 {
		t.Errorf("pixel = BGR(%d,%d,%d), want BGR(50,100,200)", b, g, r)
	}
}

func TestLoadFailsOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected open error, got nil")
	}
}

func TestListSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.jpeg", "notes.txt", "d.HEIC", "z.bmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	names, err := List(dir, []string{".jpg", ".jpeg", ".png", ".heic"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"a.JPG", "b.png", "c.jpeg", "d.HEIC"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List = %v, want %v", names, want)
	}
}

func TestListFailsOnMissingDir(t *testing.T) {
	if _, err := List(filepath.Join(t.TempDir(), "absent"), []string{".png"}); err == nil {
		t.Error("expected error for missing directory, got nil")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 0, A: 255})
		}
	}
	mat := ToMatBGR(img)
	defer mat.Close()

	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(path, mat); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	defer reloaded.Close()

	if reloaded.Rows() != 8 || reloaded.Cols() != 8 {
		t.Errorf("got %dx%d, want 8x8", reloaded.Cols(), reloaded.Rows())
	}
}
