package assessment

import "math"

// Reduction formulas collapsing multi-dimensional assessments into the
// single 0-100 score recorded per attempt. These are product decisions, not
// passthroughs; keep them aligned with what learners see in the apps.

// ReduceReadAloud averages the overall speaking score (0-100) with the
// reading accuracy (0-1, scaled up).
func ReduceReadAloud(speakingScore, readingAccuracy float64) float64 {
	return math.Round((speakingScore + readingAccuracy*100) / 2)
}

// ReduceRespondToSituation averages speaking, fluency and pronunciation.
func ReduceRespondToSituation(speaking, fluency, pronunciation float64) float64 {
	return math.Round((speaking + fluency + pronunciation) / 3)
}

// ReduceShortAnswer combines the rubric's Speaking/Listening sub-scores
// (each in [0,1]) onto the 0-100 scale.
func ReduceShortAnswer(speaking, listening float64) float64 {
	return math.Round(((speaking + listening) / 2) * 100)
}

// RepeatSentenceListening zeroes the listening score when content relevance
// (normalized to [0,1]) falls under the floor; repeating unrelated speech
// must not earn listening credit.
const repeatSentenceRelevanceFloor = 0.3

func RepeatSentenceListening(listeningScore, contentRelevance float64) float64 {
	if contentRelevance < repeatSentenceRelevanceFloor {
		return 0
	}
	return listeningScore
}

// WordBuckets counts per-word pronunciation scores into good/average/bad
// buckets with the given cutoffs.
func WordBuckets(scores []float64, goodMin, averageMin float64) (good, average, bad int) {
	for _, s := range scores {
		switch {
		case s >= goodMin:
			good++
		case s >= averageMin:
			average++
		default:
			bad++
		}
	}
	return good, average, bad
}
