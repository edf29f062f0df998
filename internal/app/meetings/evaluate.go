package meetings

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/quickmatch/internal/app/policy/meetingpolicy"
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/google/uuid"
)

// EvaluateInput names the evaluated member and the verdict.
type EvaluateInput struct {
	EvaluatedID string
	IsPositive  bool
}

// Evaluate records who's rating of a fellow member and awards the evaluated
// member EvaluationAward activity points.
//
// The gate is meeting-wide: the first successful evaluation closes it for
// every pair. Checks run in this order: meeting exists, not a
// self-evaluation, evaluated user exists, evaluator is a member, gate open.
func (c *Coordinator) Evaluate(ctx context.Context, who Identity, meetingID string, in EvaluateInput) (models.Evaluation, error) {
	const op = "evaluate"
	if err := requireIdentity(who); err != nil {
		return models.Evaluation{}, c.finish(op, err)
	}

	var rec models.Evaluation
	err := c.onMeeting(ctx, meetingID, func(ctx context.Context, tx storage.Tx, m models.Meeting) error {
		if in.EvaluatedID == who.UserID {
			return invalidArgument("you cannot evaluate yourself", nil)
		}
		if _, err := tx.GetUser(ctx, in.EvaluatedID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return newError(KindNotFound, fmt.Sprintf("user %q does not exist", in.EvaluatedID), ErrUserNotFound)
			}
			return err
		}

		allowed, err := meetingpolicy.CanEvaluate(ctx, tx, m, who.UserID, in.EvaluatedID)
		if err != nil {
			return err
		}
		if !allowed {
			return forbidden("only members of the meeting can evaluate")
		}

		exists, err := tx.EvaluationExists(ctx, who.UserID, in.EvaluatedID, m.ID)
		if err != nil {
			return err
		}
		if exists {
			return newError(KindAlreadyEvaluated, "you already evaluated this member", nil)
		}
		if !m.CanEvaluate {
			return newError(KindAlreadyEvaluated, "evaluation for this meeting is closed", nil)
		}

		if err := tx.AddActivityPoints(ctx, in.EvaluatedID, EvaluationAward); err != nil {
			return err
		}
		if err := tx.DisableEvaluation(ctx, m.ID); err != nil {
			return err
		}
		rec = models.Evaluation{
			ID:          uuid.NewString(),
			EvaluatorID: who.UserID,
			EvaluatedID: in.EvaluatedID,
			MeetingID:   m.ID,
			IsPositive:  in.IsPositive,
			CreatedAt:   c.now().UTC(),
		}
		return tx.InsertEvaluation(ctx, rec)
	})
	if err != nil {
		err = c.finish(op, err)
		switch KindOf(err) {
		case KindForbidden, KindInvalidArgument, KindAlreadyEvaluated:
			c.audit.EvaluationRejected(ctx, who.UserID, meetingID, in.EvaluatedID, err.(*Error).Message)
		}
		return models.Evaluation{}, err
	}

	c.audit.MemberEvaluated(ctx, rec, EvaluationAward)
	return rec, c.finish(op, nil)
}
