package score

import (
	"strings"

	"github.com/sells-group/survey-cli/internal/model"
)

// DefaultThreshold is the minimum token-overlap similarity for two question
// texts to count as the same question.
const DefaultThreshold = 0.6

// Match pairs one extracted question with the ground-truth entry it matched.
type Match struct {
	Extracted  model.ExtractedQuestion `json:"extracted"`
	Truth      model.GroundTruthEntry  `json:"truth"`
	Similarity float64                 `json:"similarity"`
}

// Report summarizes how an extraction run compares to ground truth.
type Report struct {
	Matches   []Match                   `json:"matches"`
	Missed    []model.GroundTruthEntry  `json:"missed"`
	Spurious  []model.ExtractedQuestion `json:"spurious"`
	Precision float64                   `json:"precision"`
	Recall    float64                   `json:"recall"`
	F1        float64                   `json:"f1"`
}

// Compare greedily matches extracted questions against ground-truth entries
// by text similarity. Each truth entry matches at most one extracted
// question: entries are walked in order and take the most similar unclaimed
// question at or above the threshold.
func Compare(questions []model.ExtractedQuestion, truth []model.GroundTruthEntry, threshold float64) Report {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	report := Report{}
	claimed := make([]bool, len(questions))

	for _, entry := range truth {
		bestIdx := -1
		bestSim := 0.0
		for i, q := range questions {
			if claimed[i] {
				continue
			}
			if sim := Similarity(q.Text, entry.Text); sim >= threshold && sim > bestSim {
				bestIdx, bestSim = i, sim
			}
		}
		if bestIdx < 0 {
			report.Missed = append(report.Missed, entry)
			continue
		}
		claimed[bestIdx] = true
		report.Matches = append(report.Matches, Match{
			Extracted:  questions[bestIdx],
			Truth:      entry,
			Similarity: bestSim,
		})
	}

	for i, q := range questions {
		if !claimed[i] {
			report.Spurious = append(report.Spurious, q)
		}
	}

	matched := float64(len(report.Matches))
	if len(questions) > 0 {
		report.Precision = matched / float64(len(questions))
	}
	if len(truth) > 0 {
		report.Recall = matched / float64(len(truth))
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}

	return report
}

// Similarity is the Jaccard overlap of the two texts' normalized token
// sets, in [0,1]. Word order does not matter; header punctuation and case
// variance wash out in normalization.
func Similarity(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokens(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if f != "" {
			out[f] = true
		}
	}
	return out
}
