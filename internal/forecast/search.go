package forecast

import (
	"errors"

	"github.com/olivesense/trapcast-go/internal/models"
)

// Search grid bounds: p and q each range over 0..3, d over 0..1, giving
// 4x2x4 = 32 candidates. The grid is fixed; shrinking it changes selection
// outcomes.
const (
	maxP = 3
	maxD = 1
	maxQ = 3
)

// ErrNoValidModel is returned when every candidate in the grid fails to
// fit. The caller must abort the forecast flow for the request, not the
// process.
var ErrNoValidModel = errors.New("no valid model found")

// CandidateResult records the outcome of one fit attempt. A non-nil Err
// marks the candidate as skipped; the search never aborts on one failure.
type CandidateResult struct {
	Order Order
	AIC   float64
	Err   error
}

// SearchResult is the outcome of the order search: the retained model and
// the per-candidate trail for diagnostics.
type SearchResult struct {
	Model      *Model
	Candidates []CandidateResult
	Evaluated  int // successful fits
}

// SelectModel exhaustively searches the (p,d,q) grid, fitting one candidate
// per combination, and retains the model with the globally lowest AIC among
// successful fits. Candidates are enumerated p outer, d middle, q inner,
// each ascending, and selection uses a strict comparison, so ties resolve
// to the first-encountered candidate. Evaluation is sequential to keep that
// tie-break deterministic.
func SelectModel(y *models.ObservationSeries, exog *models.ExogenousMatrix) (*SearchResult, error) {
	result := &SearchResult{
		Candidates: make([]CandidateResult, 0, (maxP+1)*(maxD+1)*(maxQ+1)),
	}

	var best *Model
	for p := 0; p <= maxP; p++ {
		for d := 0; d <= maxD; d++ {
			for q := 0; q <= maxQ; q++ {
				order := Order{P: p, D: d, Q: q}
				model, err := Fit(y, exog, order)
				if err != nil {
					result.Candidates = append(result.Candidates, CandidateResult{Order: order, Err: err})
					continue
				}
				result.Candidates = append(result.Candidates, CandidateResult{Order: order, AIC: model.AIC})
				result.Evaluated++
				if best == nil || model.AIC < best.AIC {
					best = model
				}
			}
		}
	}

	if best == nil {
		return nil, ErrNoValidModel
	}
	result.Model = best
	return result, nil
}
