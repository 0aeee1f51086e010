// Package tagger suggests keywords and captions for photos using Gemini.
package tagger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

// DefaultModel is the Gemini model used when none is given.
var DefaultModel = "gemini-2.5-flash"

// MaxTags is the most tags Suggest returns.
var MaxTags = 5

var tagPrompt = "generate 1-5 comma-separated one-word tags. Here are some example tags: " +
	"bw for black and white photos, family for family photos, friends for friend photos, " +
	"landscape for landscape photos, nature for nature photos, bird for bird photos, " +
	"beach for beach photos, cycling for bicycling photos. " +
	"Tags should be a present-tense singular word that a professional photographer would want to " +
	"organize their photo albums with. Use bw for blackandwhite. Do not combine multiple words. " +
	"Use urban for city photos. " +
	"If you know the location of a photo, add the name of the place, city, or country as a tag. " +
	"do not use plural words. use rock instead of rocks."

var captionPrompt = "write a caption for this photo in at most eight words, with no trailing period."

// Generator is the part of the genai client used here.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewClient returns a Gemini client; the key falls back to GOOGLE_AI_API_KEY.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_AI_API_KEY")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return c, nil
}

// Suggest returns up to MaxTags lowercase single-word tags for the JPEG at path.
func Suggest(ctx context.Context, g Generator, model string, path string) ([]string, error) {
	text, err := ask(ctx, g, model, path, tagPrompt)
	if err != nil {
		return nil, err
	}
	return parseTags(text), nil
}

// Caption returns a short caption for the JPEG at path.
func Caption(ctx context.Context, g Generator, model string, path string) (string, error) {
	text, err := ask(ctx, g, model, path, captionPrompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSpace(text), "."), nil
}

func ask(ctx context.Context, g Generator, model string, path string, prompt string) (string, error) {
	if model == "" {
		model = DefaultModel
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(bs, "image/jpeg"),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	klog.V(1).Infof("asking %s about %s (%d bytes)", model, path, len(bs))
	resp, err := g.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Text(), nil
}

func parseTags(text string) []string {
	var tags []string
	seen := map[string]bool{}
	for _, t := range strings.Split(text, ",") {
		t = strings.ToLower(strings.Join(strings.Fields(t), ""))
		t = strings.Trim(t, ".")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}
