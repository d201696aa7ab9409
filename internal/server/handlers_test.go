package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/image-bandpass/internal/bandpass"
	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// createTestImageFile creates a test image file in dir and returns its path
func createTestImageFile(t *testing.T, dir string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writePNG(t, dir, img)
}

// createStripeImageFile creates a test image with vertical black and white
// stripes two pixels wide and returns its path.
func createStripeImageFile(t *testing.T, dir string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/2)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return writePNG(t, dir, img)
}

func writePNG(t *testing.T, dir string, img image.Image) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(dir, "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// callTool runs a tools/call request and decodes the JSON text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleToolsCall returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
	return resp
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, t.TempDir(), 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &info)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("info: got %+v", info)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, t.TempDir(), 200, 150, color.RGBA{0, 255, 0, 255})

	var dims imaging.DimensionsResult
	resp := callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}, &dims)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(nil)

	resp := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New(nil)

	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "unknown tool") {
		t.Errorf("Error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{not json`),
	})
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_BoxBlur(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createStripeImageFile(t, dir, 12, 6)
	outPath := filepath.Join(dir, "blurred.ppm")

	var result BoxBlurResult
	resp := callTool(t, s, "image_box_blur", map[string]interface{}{
		"path":        imgPath,
		"radius":      2,
		"output_path": outPath,
	}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	want := BoxBlurResult{Width: 12, Height: 6, Radius: 2, Passes: 1, OutputPath: outPath}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	got, err := imaging.Load(outPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	src, _ := imaging.Load(imgPath)
	buf, _ := imaging.NewBufferFromImage(src)
	blurred, _ := bandpass.SmoothPasses(buf, 2, 1)
	expected, _ := blurred.ToImage()
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("blurred image mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleToolsCall_BoxBlur_HugeRadius(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createStripeImageFile(t, dir, 12, 6)
	outPath := filepath.Join(dir, "flat.png")

	var result BoxBlurResult
	resp := callTool(t, s, "image_box_blur", map[string]interface{}{
		"path":        imgPath,
		"radius":      math.MaxInt,
		"passes":      2,
		"output_path": outPath,
	}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if result.Radius != math.MaxInt {
		t.Errorf("Radius: got %d, want %d", result.Radius, math.MaxInt)
	}

	// Any radius covering the whole image gives the same output.
	got, err := imaging.Load(outPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	src, _ := imaging.Load(imgPath)
	buf, _ := imaging.NewBufferFromImage(src)
	blurred, _ := bandpass.SmoothPasses(buf, 12, 2)
	expected, _ := blurred.ToImage()
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("blurred image mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleToolsCall_BoxBlur_ZeroPassesCopies(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createStripeImageFile(t, dir, 8, 8)
	outPath := filepath.Join(dir, "copy.png")

	var result BoxBlurResult
	resp := callTool(t, s, "image_box_blur", map[string]interface{}{
		"path":        imgPath,
		"radius":      5,
		"passes":      0,
		"output_path": outPath,
	}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if result.Passes != 0 {
		t.Errorf("Passes: got %d, want 0", result.Passes)
	}

	src, _ := imaging.Load(imgPath)
	got, err := imaging.Load(outPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("zero-pass output differs from input (-want +got):\n%s", diff)
	}
}

func TestHandleToolsCall_BoxBlur_Errors(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createTestImageFile(t, dir, 4, 4, color.Gray{Y: 50})
	outPath := filepath.Join(dir, "out.png")

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing radius", map[string]interface{}{"path": imgPath, "output_path": outPath}},
		{"missing output", map[string]interface{}{"path": imgPath, "radius": 1}},
		{"negative radius", map[string]interface{}{"path": imgPath, "radius": -1, "output_path": outPath}},
		{"negative passes", map[string]interface{}{"path": imgPath, "radius": 1, "passes": -2, "output_path": outPath}},
		{"unknown format", map[string]interface{}{"path": imgPath, "radius": 1, "output_path": filepath.Join(dir, "out.xyz")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "image_box_blur", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
		})
	}
}

func TestHandleToolsCall_Bandpass(t *testing.T) {
	s := New(&bandpass.Options{MaxChains: 2})
	dir := t.TempDir()
	imgPath := createStripeImageFile(t, dir, 20, 10)
	outDir := t.TempDir()

	var result BandpassResult
	resp := callTool(t, s, "image_bandpass", map[string]interface{}{
		"path":       imgPath,
		"output_dir": outDir,
		"format":     "ppm",
	}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if result.Width != 20 || result.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", result.Width, result.Height)
	}
	if len(result.Bands) != 3 {
		t.Fatalf("got %d bands, want 3", len(result.Bands))
	}

	src, _ := imaging.Load(imgPath)
	res, err := bandpass.Decompose(src, nil)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	stem := bandpass.Stem(imgPath)
	for i, b := range result.Bands {
		name := res.Bands[i].Name
		if want := filepath.Join(outDir, stem+"_"+name+".ppm"); b.Path != want {
			t.Errorf("band %d path: got %s, want %s", i, b.Path, want)
		}
		if b.Summary.Name != name {
			t.Errorf("band %d summary name: got %s, want %s", i, b.Summary.Name, name)
		}
		got, err := imaging.Load(b.Path)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", b.Path, err)
		}
		if diff := cmp.Diff(res.Bands[i].Image, got); diff != "" {
			t.Errorf("%s band mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestHandleToolsCall_Bandpass_Defaults(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createStripeImageFile(t, dir, 9, 9)

	var result BandpassResult
	resp := callTool(t, s, "image_bandpass", map[string]interface{}{"path": imgPath}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	stem := bandpass.Stem(imgPath)
	for _, name := range []string{bandpass.BandTiny, bandpass.BandSmall, bandpass.BandMedium} {
		path := filepath.Join(dir, stem+"_"+name+".png")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s next to the input: %v", path, err)
		}
	}
}

func TestHandleToolsCall_BandStats(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createTestImageFile(t, dir, 6, 5, color.RGBA{90, 90, 90, 255})

	var result BandStatsResult
	resp := callTool(t, s, "image_band_stats", map[string]interface{}{"path": imgPath}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if result.Width != 6 || result.Height != 5 {
		t.Errorf("dimensions: got %dx%d, want 6x5", result.Width, result.Height)
	}
	if len(result.Bands) != 3 {
		t.Fatalf("got %d bands, want 3", len(result.Bands))
	}
	for _, b := range result.Bands {
		if b.NonZeroFraction != 0 || b.MeanHex != "#000000" {
			t.Errorf("%s: flat input should give an empty band, got %+v", b.Name, b)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("image_band_stats wrote files: %d entries in %s", len(entries), dir)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	imgPath := createTestImageFile(t, dir, 30, 30, color.RGBA{128, 128, 128, 255})

	// Test each tool to ensure executeTool correctly dispatches
	toolTests := []struct {
		name string
		args map[string]interface{}
	}{
		{"image_load", map[string]interface{}{"path": imgPath}},
		{"image_dimensions", map[string]interface{}{"path": imgPath}},
		{"image_box_blur", map[string]interface{}{"path": imgPath, "radius": 3, "passes": 2, "output_path": filepath.Join(dir, "blur.png")}},
		{"image_bandpass", map[string]interface{}{"path": imgPath, "output_dir": dir}},
		{"image_band_stats", map[string]interface{}{"path": imgPath}},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			argsJSON, _ := json.Marshal(tt.args)
			result, err := s.executeTool(tt.name, argsJSON)
			if err != nil {
				t.Fatalf("executeTool(%s) failed: %v", tt.name, err)
			}
			if result == nil {
				t.Errorf("executeTool(%s) returned nil result", tt.name)
			}
		})
	}

	// Every advertised tool is dispatched.
	for _, tool := range GetToolDefinitions() {
		found := false
		for _, tt := range toolTests {
			if tt.name == tool.Name {
				found = true
			}
		}
		if !found {
			t.Errorf("tool %s is not covered", tool.Name)
		}
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(nil)

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(nil)

	_, err := s.executeTool("image_load", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}
