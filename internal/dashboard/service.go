package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/errors"
	"github.com/tomiwa-dev/naijapulse/internal/feed"
	"github.com/tomiwa-dev/naijapulse/internal/monitoring"
	"github.com/tomiwa-dev/naijapulse/internal/quality"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 90

	// Sentiment scores inside (-0.2, 0.2) count as neutral.
	neutralBand = 0.2
)

// Service assembles chart payloads from the feed and runs every payload
// through the quality pipeline before it leaves the process.
type Service struct {
	source     feed.Source
	thresholds *quality.ThresholdStore
	metrics    *monitoring.Metrics
	logger     *monitoring.Logger

	now func() time.Time
}

// NewService creates a dashboard service.
func NewService(source feed.Source, thresholds *quality.ThresholdStore, metrics *monitoring.Metrics, logger *monitoring.Logger) *Service {
	return &Service{
		source:     source,
		thresholds: thresholds,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// ChartMeta is attached to every chart response so the frontend can decide
// how to render without a second round trip.
type ChartMeta struct {
	Quality            quality.Assessment `json:"quality"`
	Presentation       quality.Decision   `json:"presentation"`
	RecordCompleteness float64            `json:"record_completeness"`
	WindowDays         int                `json:"window_days"`
}

// MentionsQuery filters the mention summary chart.
type MentionsQuery struct {
	Parties   []string
	States    []string
	Days      int
	MinPoints int
}

// MentionsResponse is the per-politician mention summary payload.
type MentionsResponse struct {
	Summaries []types.MentionSummary `json:"summaries"`
	ChartMeta
}

// TimelineQuery filters the sentiment timeline chart.
type TimelineQuery struct {
	Politician string
	Days       int
	MinPoints  int
}

// TimelineResponse is the daily sentiment timeline payload.
type TimelineResponse struct {
	Politician string                `json:"politician,omitempty"`
	Points     []types.TimelinePoint `json:"points"`
	ChartMeta
}

// DemographicsResponse is the demographic breakdown payload.
type DemographicsResponse struct {
	Dimension string                    `json:"dimension"`
	Buckets   []types.DemographicBucket `json:"buckets"`
	ChartMeta
}

// PartiesResponse is the cross-party comparison payload.
type PartiesResponse struct {
	Parties []types.PartyComparison `json:"parties"`
	ChartMeta
}

// Mentions builds per-politician mention summaries for the window.
func (s *Service) Mentions(ctx context.Context, q MentionsQuery) (*MentionsResponse, error) {
	mentions, days, err := s.pull(ctx, q.Days)
	if err != nil {
		return nil, err
	}

	mentions = filterMentions(mentions, q.Parties, q.States)

	meta := s.assess("mentions", mentions, []string{"politician", "sentiment"},
		[]string{"party", "state", "platform", "confidence"}, q.MinPoints, days)

	resp := &MentionsResponse{Summaries: []types.MentionSummary{}, ChartMeta: meta}
	if meta.Presentation.Mode == quality.ModeInsufficient {
		return resp, nil
	}

	type agg struct {
		summary   types.MentionSummary
		platforms map[string]int
		confSum   float64
		confCount int
	}

	byPolitician := make(map[string]*agg)
	for _, m := range mentions {
		if m.Politician == "" {
			continue
		}
		a, ok := byPolitician[m.Politician]
		if !ok {
			a = &agg{
				summary:   types.MentionSummary{Politician: m.Politician, Party: m.Party},
				platforms: make(map[string]int),
			}
			byPolitician[m.Politician] = a
		}

		a.summary.Mentions++
		if !math.IsNaN(m.Sentiment) {
			switch {
			case m.Sentiment >= neutralBand:
				a.summary.Positive++
			case m.Sentiment <= -neutralBand:
				a.summary.Negative++
			default:
				a.summary.Neutral++
			}
		}
		if m.Platform != "" {
			a.platforms[m.Platform]++
		}
		if !math.IsNaN(m.Confidence) {
			a.confSum += m.Confidence
			a.confCount++
		}
	}

	for _, a := range byPolitician {
		a.summary.TopPlatform = topKey(a.platforms)
		if a.confCount > 0 {
			a.summary.Confidence = a.confSum / float64(a.confCount)
		}
		resp.Summaries = append(resp.Summaries, a.summary)
	}

	sort.Slice(resp.Summaries, func(i, j int) bool {
		if resp.Summaries[i].Mentions != resp.Summaries[j].Mentions {
			return resp.Summaries[i].Mentions > resp.Summaries[j].Mentions
		}
		return resp.Summaries[i].Politician < resp.Summaries[j].Politician
	})

	return resp, nil
}

// Timeline builds the daily sentiment series, optionally narrowed to one
// politician. Single-day volume spikes are damped toward the series median
// so one viral post does not flatten the rest of the chart.
func (s *Service) Timeline(ctx context.Context, q TimelineQuery) (*TimelineResponse, error) {
	mentions, days, err := s.pull(ctx, q.Days)
	if err != nil {
		return nil, err
	}

	if q.Politician != "" {
		filtered := mentions[:0]
		for _, m := range mentions {
			if m.Politician == q.Politician {
				filtered = append(filtered, m)
			}
		}
		mentions = filtered
	}

	meta := s.assess("sentiment_timeline", mentions, []string{"timestamp", "sentiment"},
		[]string{"confidence"}, q.MinPoints, days)

	resp := &TimelineResponse{Politician: q.Politician, Points: []types.TimelinePoint{}, ChartMeta: meta}
	if meta.Presentation.Mode == quality.ModeInsufficient {
		return resp, nil
	}

	type dayAgg struct {
		positive, neutral, negative float64
		confSum                     float64
		confCount                   int
	}

	byDay := make(map[string]*dayAgg)
	var order []string
	for _, m := range mentions {
		if math.IsNaN(m.Sentiment) {
			continue
		}
		key := m.Timestamp.UTC().Format("2006-01-02")
		a, ok := byDay[key]
		if !ok {
			a = &dayAgg{}
			byDay[key] = a
			order = append(order, key)
		}

		switch {
		case m.Sentiment >= neutralBand:
			a.positive++
		case m.Sentiment <= -neutralBand:
			a.negative++
		default:
			a.neutral++
		}
		if !math.IsNaN(m.Confidence) {
			a.confSum += m.Confidence
			a.confCount++
		}
	}
	sort.Strings(order)

	totals := make([]float64, len(order))
	for i, key := range order {
		a := byDay[key]
		totals[i] = a.positive + a.neutral + a.negative
	}
	damped := dampSpikes(totals)

	for i, key := range order {
		a := byDay[key]
		total := totals[i]
		scale := 1.0
		if total > 0 {
			scale = damped[i] / total
		}

		point := types.TimelinePoint{
			Date:     key,
			Positive: a.positive * scale,
			Neutral:  a.neutral * scale,
			Negative: a.negative * scale,
		}
		if a.confCount > 0 {
			point.Confidence = a.confSum / float64(a.confCount)
		}
		resp.Points = append(resp.Points, point)
	}

	return resp, nil
}

var demographicDimensions = map[string]func(types.Mention) string{
	"age":    func(m types.Mention) string { return m.AgeBand },
	"gender": func(m types.Mention) string { return m.Gender },
	"state":  func(m types.Mention) string { return m.State },
}

// Demographics builds the breakdown for one dimension: age, gender or state.
func (s *Service) Demographics(ctx context.Context, dimension string, days int) (*DemographicsResponse, error) {
	labelOf, ok := demographicDimensions[dimension]
	if !ok {
		return nil, errors.NewValidationError(
			fmt.Sprintf("unknown demographic dimension %q, expected age, gender or state", dimension))
	}

	mentions, windowDays, err := s.pull(ctx, days)
	if err != nil {
		return nil, err
	}

	recordField := map[string]string{"age": "age_band", "gender": "gender", "state": "state"}[dimension]
	meta := s.assess("demographics_"+dimension, mentions, []string{recordField, "sentiment"},
		[]string{"confidence"}, 0, windowDays)

	resp := &DemographicsResponse{Dimension: dimension, Buckets: []types.DemographicBucket{}, ChartMeta: meta}
	if meta.Presentation.Mode == quality.ModeInsufficient {
		return resp, nil
	}

	type bucketAgg struct {
		count        int
		sentimentSum float64
		sentimentN   int
		confSum      float64
		confN        int
	}

	buckets := make(map[string]*bucketAgg)
	for _, m := range mentions {
		label := labelOf(m)
		if label == "" {
			continue
		}
		b, ok := buckets[label]
		if !ok {
			b = &bucketAgg{}
			buckets[label] = b
		}
		b.count++
		if !math.IsNaN(m.Sentiment) {
			b.sentimentSum += m.Sentiment
			b.sentimentN++
		}
		if !math.IsNaN(m.Confidence) {
			b.confSum += m.Confidence
			b.confN++
		}
	}

	for label, b := range buckets {
		bucket := types.DemographicBucket{
			Dimension: dimension,
			Label:     label,
			Count:     b.count,
		}
		if b.sentimentN > 0 {
			bucket.SentimentAvg = b.sentimentSum / float64(b.sentimentN)
		}
		if b.confN > 0 {
			bucket.Confidence = b.confSum / float64(b.confN)
		}
		resp.Buckets = append(resp.Buckets, bucket)
	}

	sort.Slice(resp.Buckets, func(i, j int) bool {
		if resp.Buckets[i].Count != resp.Buckets[j].Count {
			return resp.Buckets[i].Count > resp.Buckets[j].Count
		}
		return resp.Buckets[i].Label < resp.Buckets[j].Label
	})

	return resp, nil
}

// CompareParties builds cross-party aggregates. An empty party list compares
// every party seen in the window.
func (s *Service) CompareParties(ctx context.Context, parties []string, days int) (*PartiesResponse, error) {
	mentions, windowDays, err := s.pull(ctx, days)
	if err != nil {
		return nil, err
	}

	meta := s.assess("parties_compare", mentions, []string{"party", "sentiment"},
		[]string{"confidence"}, 0, windowDays)

	resp := &PartiesResponse{Parties: []types.PartyComparison{}, ChartMeta: meta}
	if meta.Presentation.Mode == quality.ModeInsufficient {
		return resp, nil
	}

	wanted := make(map[string]bool, len(parties))
	for _, p := range parties {
		if p != "" {
			wanted[p] = true
		}
	}

	type partyAgg struct {
		mentions     int
		sentimentSum float64
		sentimentN   int
		confSum      float64
		confN        int
	}

	total := 0
	byParty := make(map[string]*partyAgg)
	for _, m := range mentions {
		if m.Party == "" {
			continue
		}
		if len(wanted) > 0 && !wanted[m.Party] {
			continue
		}
		total++

		a, ok := byParty[m.Party]
		if !ok {
			a = &partyAgg{}
			byParty[m.Party] = a
		}
		a.mentions++
		if !math.IsNaN(m.Sentiment) {
			a.sentimentSum += m.Sentiment
			a.sentimentN++
		}
		if !math.IsNaN(m.Confidence) {
			a.confSum += m.Confidence
			a.confN++
		}
	}

	for party, a := range byParty {
		cmp := types.PartyComparison{Party: party, Mentions: a.mentions}
		if total > 0 {
			cmp.Share = float64(a.mentions) / float64(total)
		}
		if a.sentimentN > 0 {
			cmp.SentimentAvg = a.sentimentSum / float64(a.sentimentN)
		}
		if a.confN > 0 {
			cmp.Confidence = a.confSum / float64(a.confN)
		}
		resp.Parties = append(resp.Parties, cmp)
	}

	sort.Slice(resp.Parties, func(i, j int) bool {
		if resp.Parties[i].Mentions != resp.Parties[j].Mentions {
			return resp.Parties[i].Mentions > resp.Parties[j].Mentions
		}
		return resp.Parties[i].Party < resp.Parties[j].Party
	})

	return resp, nil
}

// pull fetches and sanitizes the feed batch for a window of days.
func (s *Service) pull(ctx context.Context, days int) ([]types.Mention, int, error) {
	if days <= 0 {
		days = defaultWindowDays
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}

	window := feed.LastDays(days, s.now())

	start := time.Now()
	mentions, err := s.source.Pull(ctx, window)
	if err != nil {
		return nil, days, errors.WrapError(err, "feed pull failed")
	}

	mentions = feed.Sanitize(mentions)

	if s.metrics != nil {
		s.metrics.RecordFeedPull(len(mentions))
	}
	if s.logger != nil {
		s.logger.FeedLogger("mock", len(mentions), fmt.Sprintf("%dd", days), time.Since(start))
	}

	return mentions, days, nil
}

// assess runs the quality pipeline over a batch and records the outcome.
func (s *Service) assess(endpoint string, mentions []types.Mention, required, optional []string, minPoints, windowDays int) ChartMeta {
	th := quality.DefaultThresholds()
	if s.thresholds != nil {
		if loaded, err := s.thresholds.Load(); err == nil {
			th = loaded
		}
	}

	records := make([]quality.Record, len(mentions))
	completenessSum := 0.0
	for i, m := range mentions {
		records[i] = mentionRecord(m)
		completenessSum += quality.AssessCompleteness(records[i], required, optional).Score
	}

	assessment := quality.Classify(records, quality.ClassifyOptions{
		RequiredFields: required,
		MinPoints:      minPoints,
		Thresholds:     th,
	})
	decision := quality.DecidePresentation(assessment, th)

	meta := ChartMeta{
		Quality:      assessment,
		Presentation: decision,
		WindowDays:   windowDays,
	}
	if len(records) > 0 {
		meta.RecordCompleteness = completenessSum / float64(len(records))
	}

	if s.metrics != nil {
		s.metrics.RecordQualityLevel(assessment.OverallQuality.String())
		if decision.Mode == quality.ModeDegraded {
			s.metrics.IncrementDegradedResponse()
		}
	}
	if s.logger != nil {
		s.logger.QualityLogger(endpoint, assessment.OverallQuality.String(), string(decision.Mode),
			assessment.ValidPoints, assessment.DataCompleteness, assessment.AvgConfidence)
	}

	return meta
}

// mentionRecord converts a mention into a loose record, keeping only fields
// that carry usable data so both quality layers see the same availability.
func mentionRecord(m types.Mention) quality.Record {
	r := quality.Record{"timestamp": m.Timestamp.UTC().Format(time.RFC3339)}

	for field, v := range map[string]string{
		"politician": m.Politician,
		"party":      m.Party,
		"state":      m.State,
		"platform":   m.Platform,
		"topic":      m.Topic,
		"age_band":   m.AgeBand,
		"gender":     m.Gender,
	} {
		if v != "" {
			r[field] = v
		}
	}

	if !math.IsNaN(m.Sentiment) {
		r["sentiment"] = m.Sentiment
	}
	if !math.IsNaN(m.Confidence) {
		r["confidence"] = m.Confidence
	}

	return r
}

// filterMentions keeps mentions matching any listed party and any listed
// state. Empty lists mean no constraint.
func filterMentions(mentions []types.Mention, parties, states []string) []types.Mention {
	if len(parties) == 0 && len(states) == 0 {
		return mentions
	}

	wantParty := make(map[string]bool, len(parties))
	for _, p := range parties {
		if p != "" {
			wantParty[p] = true
		}
	}
	wantState := make(map[string]bool, len(states))
	for _, st := range states {
		if st != "" {
			wantState[st] = true
		}
	}

	out := make([]types.Mention, 0, len(mentions))
	for _, m := range mentions {
		if len(wantParty) > 0 && !wantParty[m.Party] {
			continue
		}
		if len(wantState) > 0 && !wantState[m.State] {
			continue
		}
		out = append(out, m)
	}
	return out
}

func topKey(counts map[string]int) string {
	best, bestCount := "", -1
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best, bestCount = k, n
		}
	}
	return best
}
