package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardpulse/cardpulse/internal/metrics"
)

// OCRService extracts text from uploaded card images. Preprocessing runs
// in-process; text recognition shells out to Tesseract.
type OCRService struct {
	tesseractPath string
	language      string
	workDir       string
}

// OCRResult contains the recognized text of an uploaded image.
type OCRResult struct {
	CardName string   `json:"card_name"`
	Lines    []string `json:"lines"`
}

// NewOCRService creates an OCR service. Temporary preprocessed images are
// written under workDir ("" uses the system temp dir).
func NewOCRService(workDir string) *OCRService {
	tesseractPath, err := exec.LookPath("tesseract")
	if err != nil {
		tesseractPath = "tesseract" // Will fail at runtime if not found
	}
	if workDir == "" {
		workDir = os.TempDir()
	}

	return &OCRService{
		tesseractPath: tesseractPath,
		language:      "eng",
		workDir:       workDir,
	}
}

// IsAvailable checks if Tesseract is installed.
func (s *OCRService) IsAvailable() bool {
	cmd := exec.Command(s.tesseractPath, "--version")
	return cmd.Run() == nil
}

// ExtractText preprocesses the image bytes and runs OCR over the result.
// The first non-empty recognized line is reported as the card name.
func (s *OCRService) ExtractText(imageData []byte) (*OCRResult, error) {
	start := time.Now()
	defer func() {
		metrics.OCRProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	processed, err := PreprocessCardImage(imageData)
	if err != nil {
		return nil, err
	}

	// Tesseract reads from a file, so stage the preprocessed image there.
	tmpPath := filepath.Join(s.workDir, uuid.New().String()+".png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, processed); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to stage image for OCR: %w", err)
	}
	defer os.Remove(tmpPath)

	cmd := exec.Command(
		s.tesseractPath,
		tmpPath,
		"stdout",
		"-l", s.language,
		"--psm", "3", // Fully automatic page segmentation
		"--oem", "3", // Default OCR Engine Mode
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract error: %v - %s", err, stderr.String())
	}

	lines := splitAndCleanLines(stdout.String())

	result := &OCRResult{Lines: lines}
	if len(lines) > 0 {
		result.CardName = lines[0]
	}
	return result, nil
}

// splitAndCleanLines splits OCR output into trimmed, non-empty lines.
func splitAndCleanLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// PreprocessCardImage converts an image to grayscale, applies an Otsu
// threshold, and dilates with a 3x3 kernel to connect text components.
func PreprocessCardImage(imageData []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	gray := toGray(img)
	threshold := otsuThreshold(gray)
	binary := applyThreshold(gray, threshold)
	return dilate3x3(binary), nil
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// otsuThreshold picks the threshold that minimizes intra-class variance
// over the grayscale histogram.
func otsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	total := 0
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i, count := range hist {
		sum += float64(i) * float64(count)
	}

	var sumB, wB float64
	var maxVariance float64
	var threshold uint8

	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])

		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(t)
		}
	}
	return threshold
}

func applyThreshold(gray *image.Gray, threshold uint8) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

// dilate3x3 grows white regions by one pixel in every direction.
func dilate3x3(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var maxVal uint8
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					if v := gray.GrayAt(nx, ny).Y; v > maxVal {
						maxVal = v
					}
				}
			}
			out.SetGray(x, y, color.Gray{Y: maxVal})
		}
	}
	return out
}
