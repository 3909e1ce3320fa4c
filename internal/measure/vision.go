package measure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"math"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// VisionMethod identifies measurements produced by VisionDetector.
const VisionMethod = "vision-landmarks"

// DefaultVisionModel is used when VisionConfig.Model and BABYSCAN_VISION_MODEL are empty.
const DefaultVisionModel = "claude-sonnet-4-5-20250929"

// VisionConfig configures a VisionDetector.
type VisionConfig struct {
	APIKey string // falls back to ANTHROPIC_API_KEY
	Model  string

	// RequestsPerMinute caps model calls. Zero means unlimited.
	RequestsPerMinute int

	Logger *slog.Logger
}

// VisionDetector asks a multimodal model for head and feet pixel positions and
// converts their distance to centimetres.
type VisionDetector struct {
	client  *anthropic.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewVisionDetector creates a detector backed by the Anthropic Messages API.
func NewVisionDetector(cfg VisionConfig) (*VisionDetector, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = os.Getenv("BABYSCAN_VISION_MODEL")
	}
	if model == "" {
		model = DefaultVisionModel
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &VisionDetector{
		client:  &client,
		model:   model,
		limiter: limiter,
		logger:  logger,
	}, nil
}

const visionPrompt = `You are measuring an infant in a photograph.
The image is %d pixels wide and %d pixels tall.

Locate the top of the child's head and the bottom of the child's feet (heel) in pixel coordinates,
origin at the top-left corner. If there is no child, or the head or feet are not visible, set
"subject_detected" to false.

Respond with ONLY raw JSON in this exact shape:
{"subject_detected": true, "head": {"x": 0, "y": 0}, "feet": {"x": 0, "y": 0}, "confidence": 0.0}

confidence is your certainty between 0 and 1 that both points are correct.`

// Detect implements Detector.
func (v *VisionDetector) Detect(ctx context.Context, img []byte, scaleCmPerPx float64) (*Detection, error) {
	width, height, err := imageSize(img)
	if err != nil {
		return nil, err
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	mediaType := http.DetectContentType(img)
	resp, err := v.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(v.model),
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(img)),
				anthropic.NewTextBlock(fmt.Sprintf(visionPrompt, width, height)),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	lm, err := parseLandmarkResponse(text.String())
	if err != nil {
		v.logger.Warn("unparseable vision response", "error", err, "response", text.String())
		return nil, err
	}

	det := lm.toDetection(width, height, scaleCmPerPx)
	v.logger.Debug("vision detection",
		"model", v.model,
		"pixels", lm.pixelHeight(),
		"confidence", lm.Confidence)
	return det, nil
}

// imageSize decodes only the image header. Undecodable input is a detection failure.
func imageSize(img []byte) (int, int, error) {
	if len(img) == 0 {
		return 0, 0, fmt.Errorf("%w: empty image", ErrDetectionFailed)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: image is not decodable: %v", ErrDetectionFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: image has no pixels", ErrDetectionFailed)
	}
	return cfg.Width, cfg.Height, nil
}

type pixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type landmarkResponse struct {
	SubjectDetected bool        `json:"subject_detected"`
	Head            *pixelPoint `json:"head"`
	Feet            *pixelPoint `json:"feet"`
	Confidence      float64     `json:"confidence"`
}

var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// parseLandmarkResponse extracts the JSON object from a model reply, tolerating
// code fences and surrounding prose.
func parseLandmarkResponse(text string) (*landmarkResponse, error) {
	raw := jsonObjectRegex.FindString(text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in vision response")
	}
	var lr landmarkResponse
	if err := json.Unmarshal([]byte(raw), &lr); err != nil {
		return nil, fmt.Errorf("failed to parse vision response: %w", err)
	}
	if !lr.SubjectDetected || lr.Head == nil || lr.Feet == nil {
		return nil, ErrDetectionFailed
	}
	if lr.pixelHeight() < 1 {
		return nil, fmt.Errorf("%w: head and feet coincide", ErrDetectionFailed)
	}
	return &lr, nil
}

func (lr *landmarkResponse) pixelHeight() float64 {
	return math.Hypot(lr.Feet.X-lr.Head.X, lr.Feet.Y-lr.Head.Y)
}

func (lr *landmarkResponse) toDetection(width, height int, scaleCmPerPx float64) *Detection {
	norm := func(p *pixelPoint) Point {
		return Point{X: clamp01(p.X / float64(width)), Y: clamp01(p.Y / float64(height))}
	}
	return &Detection{
		HeightCm: lr.pixelHeight() * scaleCmPerPx,
		Landmarks: &Landmarks{
			Head:       norm(lr.Head),
			Feet:       norm(lr.Feet),
			Confidence: clamp01(lr.Confidence),
		},
		Method: VisionMethod,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
