package events

import (
	"context"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
	"github.com/pharmadist/pharmadist-backend/pkg/messaging"
)

// WarehouseEventPublisher publishes warehouse-related events
type WarehouseEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewWarehouseEventPublisher creates a new warehouse event publisher
func NewWarehouseEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*WarehouseEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeWarehouseEvents, "warehouse-service", log)
	if err != nil {
		return nil, err
	}

	return &WarehouseEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishAuditTransition publishes a check order lifecycle event. A nil
// publisher is a no-op so tests and degraded startups don't need a broker.
func (p *WarehouseEventPublisher) PublishAuditTransition(ctx context.Context, eventType string, order *domain.CheckOrder, performedBy string, inspectionCount int) {
	if p == nil {
		return
	}

	data := messaging.AuditTransitionEvent{
		CheckOrderID:    order.ID,
		Status:          string(order.Status),
		PerformedBy:     performedBy,
		InspectionCount: inspectionCount,
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("check_order_id", order.ID).Msg("failed to publish audit transition event")
	}
}

// PublishPackagePutAway publishes a package put-away event
func (p *WarehouseEventPublisher) PublishPackagePutAway(ctx context.Context, pkg *domain.Package, performedBy string) {
	if p == nil {
		return
	}

	locationID := ""
	if pkg.LocationID != nil {
		locationID = *pkg.LocationID
	}

	data := messaging.PackagePutAwayEvent{
		PackageID:   pkg.ID,
		LocationID:  locationID,
		Quantity:    pkg.Quantity,
		PerformedBy: performedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventPackagePutAway, data); err != nil {
		p.logger.Error().Err(err).Str("package_id", pkg.ID).Msg("failed to publish package put away event")
	}
}
