package events

import (
	"go.uber.org/zap"

	"sdn-controller/pkg/model"
)

// LogSink writes each event as a structured log entry.
type LogSink struct {
	Log *zap.Logger
}

func (l LogSink) Publish(e model.Event) {
	log := l.Log.With(zap.String("event", string(e.Kind)))
	switch e.Kind {
	case model.EventNodeAdded, model.EventNodeRemoved:
		log.Info("node "+verb(e.Kind), zap.String("node", e.Node))
	case model.EventLinkAdded:
		log.Info("link added", zap.String("u", e.U), zap.String("v", e.V), zap.Int("capacity", e.Capacity))
	case model.EventLinkRemoved:
		log.Info("link removed", zap.String("u", e.U), zap.String("v", e.V))
	case model.EventFlowInstalled:
		fields := []zap.Field{zap.Int64("flow", e.FlowID), zap.String("src", e.Src), zap.String("dst", e.Dst), zap.Strings("path", e.Path)}
		if len(e.Backup) > 0 {
			fields = append(fields, zap.Strings("backup", e.Backup))
		}
		log.Info("flow installed", fields...)
	case model.EventFlowInstallFailed:
		log.Warn("flow not installed", zap.String("src", e.Src), zap.String("dst", e.Dst), zap.String("reason", e.Reason))
	case model.EventFlowProgrammed:
		if e.Rule == nil {
			return
		}
		log.Debug("switch programmed",
			zap.String("switch", e.Rule.Switch),
			zap.String("match_dst", e.Rule.MatchDestination),
			zap.String("out_port_to", e.Rule.OutputTowards),
			zap.Int64("flow", e.FlowID))
	case model.EventFlowRerouted:
		log.Info("flow rerouted", zap.Int64("flow", e.FlowID), zap.Strings("path", e.Path), zap.String("u", e.U), zap.String("v", e.V))
	case model.EventFlowBroken:
		log.Warn("no backup available for flow", zap.Int64("flow", e.FlowID), zap.Strings("stale_path", e.Path), zap.String("u", e.U), zap.String("v", e.V))
	case model.EventFlowRemoved:
		log.Info("flow removed", zap.Int64("flow", e.FlowID))
	default:
		log.Info("event", zap.Any("payload", e))
	}
}

func verb(k model.EventKind) string {
	if k == model.EventNodeRemoved {
		return "removed"
	}
	return "added"
}
