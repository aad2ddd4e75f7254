package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"agriwise-client/internal/classify"
	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/models"
)

type Renderer struct {
	w      io.Writer
	styles Styles
}

func New(w io.Writer) *Renderer {
	return &Renderer{w: w, styles: NewStyles(w)}
}

func (r *Renderer) Styles() Styles { return r.styles }

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.w, s)
}

// Lands prints results in the order received.
func (r *Renderer) Lands(view *classify.LandView) {
	if view == nil || len(view.Results) == 0 {
		r.println(r.styles.Title.Render("No lands found"))
		r.println(r.styles.Muted.Render("Try adjusting your search criteria"))
		return
	}

	r.println(r.styles.Title.Render(fmt.Sprintf("Found %d Recommendations", len(view.Results))))
	r.println(r.styles.Muted.Render(fmt.Sprintf("Response time: %dms", view.ResponseTimeMS)))

	for _, land := range view.Results {
		res := land.Result
		var b strings.Builder
		fmt.Fprintf(&b, "#%d %s", land.Rank, r.styles.Bold.Render(landName(res)))
		if res.City != "" {
			fmt.Fprintf(&b, " (%s)", res.City)
		}
		fmt.Fprintf(&b, "\n%s  score %.1f\n", r.styles.Tier(land.Tier).Render(land.Level), res.Score)
		fmt.Fprintf(&b, "%.2f acres  %s total  %s/acre", res.SizeInAcres, money(res.TotalPrice), money(res.PricePerAcre))
		if len(res.Subscores) > 0 {
			b.WriteString("\n" + r.styles.Muted.Render(subscores(res.Subscores)))
		}
		if len(res.MatchingFeatures) > 0 {
			b.WriteString("\n+ " + strings.Join(res.MatchingFeatures, "\n+ "))
		}
		if len(res.Concerns) > 0 {
			b.WriteString("\n" + r.styles.Field.Render("! "+strings.Join(res.Concerns, "\n! ")))
		}
		r.println(r.styles.Card.Render(b.String()))
	}
}

func landName(res models.RecommendationResult) string {
	if res.Name != "" {
		return res.Name
	}
	return fmt.Sprintf("Land %d", res.LandID)
}

func money(v float64) string {
	whole := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")
	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func subscores(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %.0f", k, m[k])
	}
	return strings.Join(parts, " | ")
}

func (r *Renderer) Crop(view *classify.CropView) {
	if view == nil {
		return
	}
	head := fmt.Sprintf("%s  %s confidence",
		r.styles.Bold.Render(strings.ToUpper(view.RecommendedCrop)),
		r.styles.Tier(view.Tier).Render(fmt.Sprintf("%.2f%%", view.ConfidencePct)))
	body := []string{
		head,
		"Soil suitability: " + r.styles.Tier(view.Suitability.Tier()).Render(string(view.Suitability)),
	}
	if len(view.Alternatives) > 0 {
		body = append(body, "", r.styles.Header.Render("Top recommendations"))
		for i, alt := range view.Alternatives {
			body = append(body, fmt.Sprintf("%d. %-12s %s", i+1, alt.Crop,
				r.styles.Tier(alt.Tier).Render(fmt.Sprintf("%.2f%%", alt.ConfidencePct))))
		}
	}
	r.println(r.styles.Card.Render(strings.Join(body, "\n")))
	r.println(r.styles.Muted.Render(fmt.Sprintf("Response time: %dms", view.ResponseTimeMS)))
}

func (r *Renderer) History(items []classify.HistoryItem) {
	r.println(r.styles.Title.Render(fmt.Sprintf("My History (%d)", len(items))))
	if len(items) == 0 {
		r.println(r.styles.Muted.Render("No recommendations yet. Start by analyzing your soil!"))
		return
	}
	for _, it := range items {
		line := fmt.Sprintf("%-12s %s  %s",
			it.Entry.RecommendedCrop,
			r.styles.Tier(it.Tier).Render(fmt.Sprintf("%6.2f%%", it.ConfidencePct)),
			string(it.Suitability))
		if it.Entry.CreatedAt != "" {
			line += "  " + r.styles.Muted.Render(it.Entry.CreatedAt)
		}
		r.println(line)
	}
}

// Stats prints the header block; nil means stats are not loaded yet.
func (r *Renderer) Stats(s *models.StatsSnapshot) {
	if s == nil {
		return
	}
	lines := []string{
		fmt.Sprintf("%s Total Recommendations", r.styles.Bold.Render(fmt.Sprint(s.TotalRecommendations))),
		fmt.Sprintf("Average confidence: %.2f%%", s.AvgConfidence),
	}
	if len(s.MostRecommendedCrops) > 0 {
		top := make([]string, len(s.MostRecommendedCrops))
		for i, c := range s.MostRecommendedCrops {
			top[i] = fmt.Sprintf("%s (%d)", c.RecommendedCrop, c.Count)
		}
		lines = append(lines, "Most recommended: "+strings.Join(top, ", "))
	}
	if s.LastRecommendation != nil {
		lines = append(lines, r.styles.Muted.Render("Last: "+*s.LastRecommendation))
	}
	r.println(r.styles.Card.Render(strings.Join(lines, "\n")))
}

func (r *Renderer) Crops(crops []string) {
	r.println(r.styles.Title.Render(fmt.Sprintf("All Crops (%d)", len(crops))))
	r.println(strings.Join(crops, ", "))
}

func (r *Renderer) Requirements(req *models.CropRequirements) {
	if req == nil {
		return
	}
	r.println(r.styles.Title.Render(fmt.Sprintf("Optimal conditions for %s", req.CropName)))
	keys := make([]string, 0, len(req.OptimalConditions))
	for k := range req.OptimalConditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c := req.OptimalConditions[k]
		r.println(fmt.Sprintf("%-12s %8.2f - %-8.2f avg %.2f", k, c.Min, c.Max, c.Avg))
	}
	r.println(r.styles.Muted.Render(fmt.Sprintf("based on %d samples", req.SamplesCount)))
}

// Error surfaces a failure according to its disposition.
func (r *Renderer) Error(err *apperrors.StandardError, d apperrors.Disposition) {
	if err == nil {
		return
	}
	switch d {
	case apperrors.DispositionInline:
		for _, f := range err.Fields {
			r.println(r.styles.Field.Render(fmt.Sprintf("  %s: %s", f.Field, f.Message)))
		}
		if len(err.Fields) == 0 {
			r.println(r.styles.Field.Render(err.Message))
		}
	case apperrors.DispositionReauthenticate:
		r.println(r.styles.Banner.Render("Session expired or missing. Please log in again."))
	default:
		r.println(r.styles.Banner.Render(err.Message + "  [dismiss]"))
	}
}
