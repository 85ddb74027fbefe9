package storage

import (
	"tokenark/internal/nft"
)

// Status is the aggregate storage verdict for one asset.
type Status string

const (
	StatusDecentralized Status = "decentralized"
	StatusAtRisk        Status = "at-risk"
	StatusMixed         Status = "mixed"
)

// Report aggregates the classification of every URL one asset references.
// The token URI is always analyzed; image and animation analyses are present
// only when the metadata document carries those fields.
type Report struct {
	TokenURI             Analysis  `json:"tokenUri"`
	Image                *Analysis `json:"image,omitempty"`
	Animation            *Analysis `json:"animation,omitempty"`
	IsFullyDecentralized bool      `json:"isFullyDecentralized"`
	AtRiskURLs           []string  `json:"atRiskUrls"`
}

// Analyze classifies the token URI and, when metadata is available, the
// image and animation URLs. AtRiskURLs collects the original (unnormalized)
// URL of every at-risk analysis in evaluation order: token URI first, then
// image, then animation. A missing token URI classifies as centralized and
// is counted at risk.
func Analyze(tokenURI string, meta *nft.Metadata) Report {
	report := Report{
		TokenURI:   ClassifyURL(tokenURI),
		AtRiskURLs: []string{},
	}
	if report.TokenURI.IsAtRisk {
		report.AtRiskURLs = append(report.AtRiskURLs, report.TokenURI.OriginalURL)
	}

	if meta != nil && meta.Image != "" {
		analysis := ClassifyURL(meta.Image)
		report.Image = &analysis
		if analysis.IsAtRisk {
			report.AtRiskURLs = append(report.AtRiskURLs, analysis.OriginalURL)
		}
	}
	if meta != nil && meta.AnimationURL != "" {
		analysis := ClassifyURL(meta.AnimationURL)
		report.Animation = &analysis
		if analysis.IsAtRisk {
			report.AtRiskURLs = append(report.AtRiskURLs, analysis.OriginalURL)
		}
	}

	report.IsFullyDecentralized = len(report.AtRiskURLs) == 0
	return report
}

// Status reduces a report to the tri-state manifest verdict: decentralized
// when every analysis is safe, mixed when safe and at-risk analyses coexist,
// at-risk otherwise.
func (r Report) Status() Status {
	if r.IsFullyDecentralized {
		return StatusDecentralized
	}
	safe := 0
	atRisk := 0
	for _, analysis := range r.present() {
		if analysis.IsAtRisk {
			atRisk++
		} else {
			safe++
		}
	}
	if safe > 0 && atRisk > 0 {
		return StatusMixed
	}
	return StatusAtRisk
}

func (r Report) present() []Analysis {
	analyses := []Analysis{r.TokenURI}
	if r.Image != nil {
		analyses = append(analyses, *r.Image)
	}
	if r.Animation != nil {
		analyses = append(analyses, *r.Animation)
	}
	return analyses
}
