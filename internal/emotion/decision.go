package emotion

import "github.com/timmy/contextual/internal/domain"

// Thresholds tune the two-stage decision.
type Thresholds struct {
	// MinConfidence: classifier answers at or below it are ignored.
	MinConfidence float32
	// TrustThreshold: classifier answers below it may be overridden by anchors.
	TrustThreshold float32
	// AnchorFloor: anchor scores at or below it never win.
	AnchorFloor float32
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinConfidence:  0.3,
		TrustThreshold: 0.6,
		AnchorFloor:    0.25,
	}
}

// Stage names which step produced a Decision.
type Stage string

const (
	StageNone       Stage = "neutral"
	StageClassifier Stage = "classifier"
	StageAnchor     Stage = "anchor"
)

// Decision is the outcome of Decide.
type Decision struct {
	Category domain.Category
	Score    float32
	Stage    Stage
}

// Decide combines an optional classifier prediction with anchor scores.
// Comparisons are strict: an anchor replaces the incumbent only with a
// greater score, so ties keep the classifier's answer.
func Decide(prediction *Prediction, anchors []AnchorScore, th Thresholds) Decision {
	best := Decision{Category: domain.CategoryNeutral, Stage: StageNone}

	if prediction != nil &&
		prediction.Confidence > th.MinConfidence &&
		prediction.Category != domain.CategoryNeutral {
		best = Decision{
			Category: prediction.Category,
			Score:    prediction.Confidence,
			Stage:    StageClassifier,
		}
	}

	if best.Category != domain.CategoryNeutral && best.Score >= th.TrustThreshold {
		return best
	}

	for _, a := range anchors {
		if a.Score > th.AnchorFloor && a.Score > best.Score {
			best = Decision{Category: a.Category, Score: a.Score, Stage: StageAnchor}
		}
	}
	return best
}
