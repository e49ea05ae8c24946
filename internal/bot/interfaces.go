// Package bot wires the timeline classifier, the reminder policy and the
// message renderer together and drives them over a list of tracked items.
package bot

import (
	"context"

	"github.com/spiffcs/checkin/internal/model"
)

// TimelineSource supplies the already-paginated comment list for an item.
type TimelineSource interface {
	Comments(ctx context.Context, item model.TrackedItem) ([]model.Comment, error)
}

// Effects are the two side effects a Decision can ask for.
// The engine never calls them; only the Runner does.
type Effects interface {
	AddLabel(ctx context.Context, repo string, number int, label string) error
	CreateComment(ctx context.Context, repo string, number int, body string) error
}

// Evaluator decides what to do with one item given its timeline.
type Evaluator interface {
	Evaluate(item model.TrackedItem, comments []model.Comment) Evaluation
}

// Ensure Engine implements Evaluator interface.
var _ Evaluator = (*Engine)(nil)
