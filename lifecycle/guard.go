package lifecycle

import (
	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Guard validates lifecycle writes before they are sent. It is stateless
// and safe for concurrent use.
type Guard struct {
	logger *zap.Logger
}

// NewGuard creates a Guard. A nil logger disables logging.
func NewGuard(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger}
}

// Check decodes params into a command for op and validates it. Writes the
// lifecycle does not govern pass through unchanged. For a disqualification
// without an explicit reason, the returned params carry the derived one so
// the remote store records why.
func (g *Guard) Check(op ops.Operation, params ops.Params) (ops.Params, error) {
	if !Guarded(op) {
		return params, nil
	}
	cmd, err := DecodeCommand(op, params)
	if err == nil {
		err = cmd.Validate()
	}
	if err != nil {
		g.logger.Debug("lifecycle: write rejected",
			zap.Stringer("op", op),
			zap.String("candidate", params[ParamID]),
			zap.Error(err),
		)
		return nil, err
	}

	if cmd.TargetStage() == StageDisqualified && params[ParamReason] == "" {
		if reason := cmd.DisqualificationReason(); reason != "" {
			out := params.Clone()
			out[ParamReason] = reason
			return out, nil
		}
	}
	return params, nil
}
