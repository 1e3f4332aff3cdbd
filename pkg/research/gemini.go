package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/workshopdir/curator/internal/utils/ptr"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
)

// generator is the slice of the genai models service used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiResearcher asks a Gemini model for a structured faculty profile.
type GeminiResearcher struct {
	models  generator
	model   string
	timeout time.Duration
}

// NewGeminiResearcher creates a researcher backed by the Gemini API.
func NewGeminiResearcher(ctx context.Context, apiKey, model string) (*GeminiResearcher, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{
			Component: "gemini",
			Message:   "API key required - set GEMINI_API_KEY or research.gemini.api_key",
		}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.NewConfigError("gemini", "cannot create client", err)
	}
	return newGeminiResearcher(client.Models, model), nil
}

func newGeminiResearcher(models generator, model string) *GeminiResearcher {
	if model == "" {
		model = constants.DefaultGeminiModel
	}
	return &GeminiResearcher{models: models, model: model, timeout: constants.ResearchTimeout}
}

// profile is the JSON shape the model is asked to return.
type profile struct {
	Title         string   `json:"title"`
	Affiliation   string   `json:"affiliation"`
	Department    string   `json:"department"`
	LabWebsite    string   `json:"labWebsite"`
	ORCID         string   `json:"orcid"`
	ResearchAreas []string `json:"researchAreas"`
	ShortBio      string   `json:"shortBio"`
	Confidence    string   `json:"confidence"`
}

// Research implements Researcher.
func (g *GeminiResearcher) Research(ctx context.Context, s Subject) (*enrichment.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt(s)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, errors.WrapResource("research", "faculty", s.ID, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errors.NewResourceError("research", "faculty", s.ID, fmt.Errorf("empty response"))
	}
	var p profile
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, errors.NewParseError("json", s.ID, "model returned invalid JSON", err)
	}
	return p.update(), nil
}

func prompt(s Subject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find public professional information about the researcher %q.\n", s.Name)
	if s.Affiliation != "" {
		fmt.Fprintf(&b, "They are believed to work at %s.\n", s.Affiliation)
	}
	if len(s.Areas) > 0 {
		fmt.Fprintf(&b, "Known research areas: %s.\n", strings.Join(s.Areas, ", "))
	}
	b.WriteString(`Respond with a single JSON object with the string fields title, affiliation, department, labWebsite, orcid, shortBio, confidence (one of low, medium, high) and the string array researchAreas. `)
	b.WriteString(`Leave a field empty when unsure. Do not invent ORCID identifiers.`)
	return b.String()
}

// update converts a model answer. Model answers are never trusted above
// medium confidence and malformed ORCIDs are dropped.
func (p profile) update() *enrichment.Update {
	u := &enrichment.Update{
		Professional: &enrichment.ProfessionalUpdate{
			Title:       ptr.NonEmpty(p.Title),
			Affiliation: ptr.NonEmpty(p.Affiliation),
			Department:  ptr.NonEmpty(p.Department),
			LabWebsite:  ptr.NonEmpty(p.LabWebsite),
		},
		Academic: &enrichment.AcademicUpdate{ResearchAreas: p.ResearchAreas},
		Source:   constants.SourceGemini,
	}
	if orcid := enrichment.NormalizeORCID(p.ORCID); enrichment.ValidORCID(orcid) {
		u.Academic.ORCID = &orcid
	}
	if p.ShortBio != "" {
		u.Profile = &enrichment.ProfileUpdate{ShortBio: ptr.NonEmpty(p.ShortBio), Source: ptr.To(constants.SourceGemini)}
	}

	c, err := enrichment.ParseConfidence(p.Confidence)
	switch {
	case err != nil, c == enrichment.ConfidencePending:
		c = enrichment.ConfidenceLow
	case c.Rank() > enrichment.ConfidenceMedium.Rank():
		c = enrichment.ConfidenceMedium
	}
	u.Confidence = c
	return u
}
