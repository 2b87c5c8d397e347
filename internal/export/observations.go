package export

import "github.com/jwalitptl/health-export/internal/model"

// VisitLeaves walks an observation tree depth first, children in original
// order, and calls visit once per leaf. A panel (no value, one or more
// children) contributes no visit of its own; a node with neither a value nor
// children contributes nothing.
func VisitLeaves(o *model.Observation, visit func(*model.Observation) error) error {
	if o.Value == nil {
		for _, child := range o.Observations {
			if err := VisitLeaves(child, visit); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(o)
}
