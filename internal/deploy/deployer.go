package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/database"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Operation actions recorded in the operations log.
const (
	ActionDeploy = "deploy"
	ActionDelete = "delete"
)

// ErrDuplicateDeploy is returned when the same deploy is still in flight.
var ErrDuplicateDeploy = errors.New("a deploy with this name is already in progress")

// Client creates and deletes resources.
type Client interface {
	Create(ctx context.Context, kind apmec.Kind, body map[string]any) (apmec.Record, error)
	Delete(ctx context.Context, kind apmec.Kind, id string) error
}

// OperationLog records deploy and delete operations.
type OperationLog interface {
	Begin(ctx context.Context, kind, action, name string) (database.Operation, error)
	Finish(ctx context.Context, id, resourceID string, err error) error
}

// Deployer sends deploy and delete requests and logs them.
type Deployer struct {
	Client Client
	Log    OperationLog
}

// NewDeployer creates a Deployer. log may be nil.
func NewDeployer(client Client, log OperationLog) *Deployer {
	return &Deployer{Client: client, Log: log}
}

// Deploy validates req and creates a kind instance from it.
//
// The operation is logged as pending before the upstream create and finished
// with its outcome afterwards. While a deploy of the same kind and trimmed
// name is pending, a second one is rejected without reaching the API.
//
// Parameters:
//   - ctx: Context for the upstream request
//   - kind: A deployable kind (meca, mea, ns, nfy)
//   - req: The submitted form
//   - sessionID: Recorded in the audit log, may be empty
//
// Returns:
//   - apmec.Record: The created resource as returned by the API
//   - error: *ValidationError, ErrDuplicateDeploy (wrapped) or the API error
func (d *Deployer) Deploy(ctx context.Context, kind apmec.Kind, req Request, sessionID string) (apmec.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := req.Body(kind)
	if err != nil {
		return nil, &ValidationError{Field: "kind", Message: err.Error()}
	}

	// The operation is keyed on the name as sent upstream.
	name := strings.TrimSpace(req.Name)
	op, err := d.begin(ctx, kind, ActionDeploy, name)
	if err != nil {
		if errors.Is(err, database.ErrInFlight) {
			d.audit(ActionDeploy, "rejected", kind, name, sessionID, ErrDuplicateDeploy)
			return nil, fmt.Errorf("%s %q: %w", kind, name, ErrDuplicateDeploy)
		}
		return nil, err
	}

	rec, err := d.Client.Create(ctx, kind, body)
	d.finish(ctx, op, rec.ID(), err)
	if err != nil {
		d.audit(ActionDeploy, "failure", kind, name, sessionID, err)
		return nil, fmt.Errorf("failed to create %s %q: %w", kind, name, err)
	}

	d.audit(ActionDeploy, "success", kind, name, sessionID, nil)
	logging.Info("Deploy", "%s %s create operation initiated (id %s)", kind.Title(), name, rec.ID())
	return rec, nil
}

// Delete terminates the kind instance id.
func (d *Deployer) Delete(ctx context.Context, kind apmec.Kind, id, sessionID string) error {
	op, err := d.begin(ctx, kind, ActionDelete, id)
	if err != nil {
		if errors.Is(err, database.ErrInFlight) {
			return fmt.Errorf("delete %s %s: %w", kind, id, database.ErrInFlight)
		}
		return err
	}

	err = d.Client.Delete(ctx, kind, id)
	d.finish(ctx, op, id, err)
	if err != nil {
		d.audit(ActionDelete, "failure", kind, id, sessionID, err)
		return err
	}

	d.audit(ActionDelete, "success", kind, id, sessionID, nil)
	return nil
}

func (d *Deployer) begin(ctx context.Context, kind apmec.Kind, action, name string) (*database.Operation, error) {
	if d.Log == nil {
		return nil, nil
	}
	op, err := d.Log.Begin(ctx, string(kind), action, name)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (d *Deployer) finish(ctx context.Context, op *database.Operation, resourceID string, opErr error) {
	if op == nil {
		return
	}
	// The upstream request already ran; record the outcome even if ctx ended.
	if err := d.Log.Finish(context.WithoutCancel(ctx), op.ID, resourceID, opErr); err != nil {
		logging.Error("Deploy", err, "Failed to record outcome of operation %s", op.ID)
	}
}

func (d *Deployer) audit(action, outcome string, kind apmec.Kind, target, sessionID string, err error) {
	event := logging.AuditEvent{
		Action:    action,
		Outcome:   outcome,
		Kind:      string(kind),
		Target:    target,
		SessionID: logging.TruncateSessionID(sessionID),
	}
	if err != nil {
		event.Error = err.Error()
	}
	logging.Audit(event)
}
