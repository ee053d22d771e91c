package search

import "sort"

// Poll drains all buffered deep-scan messages and folds them into the result
// set. Matches already present (typically from the quick pass) are discarded.
// Returns whether anything changed, as a repaint hint.
func (e *Engine) Poll() bool {
	if e.scan == nil {
		return false
	}

	updated := false
	for {
		select {
		case m := <-e.scan.msgs:
			switch m.kind {
			case matchMessage:
				if e.addResult(m.result) {
					updated = true
				}
			case progressMessage:
				e.Scanned = m.scanned
				updated = true
			case doneMessage:
				e.Scanned = m.scanned
				e.finishScan()
				updated = true
				return updated
			}
		default:
			return updated
		}
	}
}

// finishScan records scan completion. Results stay displayed; in fuzzy mode
// they are ordered best score first once the stream is complete.
func (e *Engine) finishScan() {
	e.Searching = false
	e.scan = nil

	if e.FuzzyMode {
		sort.SliceStable(e.Results, func(i, j int) bool {
			return e.Results[i].Score > e.Results[j].Score
		})
		if e.Selected >= len(e.Results) {
			e.Selected = 0
		}
	}
}
