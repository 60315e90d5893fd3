// Package handler subscribes workflow side effects to the event dispatcher.
// Every handler is fire-and-forget: a failure is logged and never propagates
// back into the transition that raised the event.
package handler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/dispatcher"
	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/event"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// SideEffects owns the post-transition reactions: applicant notifications and
// document generation
type SideEffects struct {
	apps     port.ApplicationRepository
	notifier port.StageNotifier
	docs     port.DocumentGenerator
	logger   *zap.Logger
}

// NewSideEffects creates the side-effect handler set
func NewSideEffects(
	apps port.ApplicationRepository,
	notifier port.StageNotifier,
	docs port.DocumentGenerator,
	logger *zap.Logger,
) *SideEffects {
	return &SideEffects{
		apps:     apps,
		notifier: notifier,
		docs:     docs,
		logger:   logger,
	}
}

// Register subscribes all side-effect handlers on the dispatcher
func (s *SideEffects) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeStatusChanged, "stage-notifier", s.onStatusChanged)
	d.Subscribe(event.TypePaymentCompleted, "receipt-generator", s.onPaymentCompleted)
	d.Subscribe(event.TypeCertificateIssued, "certificate-generator", s.onCertificateIssued)
	d.Subscribe(event.TypeStageRejected, "rejection-audit", s.onStageRejected)
}

func (s *SideEffects) onStatusChanged(ctx context.Context, evt *event.Event) error {
	if s.notifier == nil {
		return nil
	}

	app, err := s.load(ctx, evt.ApplicationID)
	if err != nil {
		return err
	}

	newStatus := workflow.Status(evt.GetString("to_status"))
	if err := s.notifier.NotifyStage(ctx, app, newStatus, evt.GetString("remarks")); err != nil {
		s.logger.Warn("Stage notification failed",
			zap.Int64("application_id", evt.ApplicationID),
			zap.String("status", string(newStatus)),
			zap.Error(err))
	}
	return nil
}

func (s *SideEffects) onPaymentCompleted(ctx context.Context, evt *event.Event) error {
	app, err := s.load(ctx, evt.ApplicationID)
	if err != nil {
		return err
	}

	path, err := s.docs.GenerateReceipt(ctx, app)
	if err != nil {
		s.logger.Error("Receipt generation failed",
			zap.Int64("application_id", evt.ApplicationID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Payment receipt ready",
		zap.Int64("application_id", evt.ApplicationID),
		zap.String("path", path))
	return nil
}

func (s *SideEffects) onCertificateIssued(ctx context.Context, evt *event.Event) error {
	app, err := s.load(ctx, evt.ApplicationID)
	if err != nil {
		return err
	}

	path, err := s.docs.GenerateCertificate(ctx, app)
	if err != nil {
		s.logger.Error("Certificate generation failed",
			zap.Int64("application_id", evt.ApplicationID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Certificate ready",
		zap.Int64("application_id", evt.ApplicationID),
		zap.String("path", path))
	return nil
}

func (s *SideEffects) onStageRejected(ctx context.Context, evt *event.Event) error {
	s.logger.Warn("Application rejected at review stage",
		zap.Int64("application_id", evt.ApplicationID),
		zap.String("stage_status", evt.GetString("to_status")),
		zap.String("actor", evt.GetString("actor")),
		zap.String("reason", evt.GetString("remarks")))
	return nil
}

func (s *SideEffects) load(ctx context.Context, applicationID int64) (*entity.Application, error) {
	a, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application %d: %w", applicationID, err)
	}
	if a == nil {
		return nil, fmt.Errorf("application %d not found", applicationID)
	}
	return a, nil
}
