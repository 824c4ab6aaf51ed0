package claimflow

import (
	"context"
	"log"

	"github.com/viant/claimflow/model/lifecycle"
	"github.com/viant/claimflow/service/event"
	"github.com/viant/claimflow/service/orchestrator"
	"github.com/viant/claimflow/service/payment"
	"github.com/viant/claimflow/service/resolver"
	"github.com/viant/claimflow/service/sync"
)

// Runtime is the running facade over the wired components: it subscribes
// the listeners to the notification queues and exposes the publish side the
// engine adapter feeds.
type Runtime struct {
	service         *Service
	resolver        *resolver.Service
	syncListener    *sync.Service
	paymentListener *payment.Service
	orchestrator    *orchestrator.Service

	transitions *event.Publisher[*lifecycle.PlanItemTransition]
	activities  *event.Publisher[*lifecycle.ActivityEvent]
}

// Orchestrator returns the claim operation service.
func (r *Runtime) Orchestrator() *orchestrator.Service {
	return r.orchestrator
}

// Resolver returns the notification identity resolver.
func (r *Runtime) Resolver() *resolver.Service {
	return r.resolver
}

// Start subscribes the lifecycle and payment listeners to their queues and
// caches the matching publishers.
func (r *Runtime) Start() error {
	events := r.service.eventService

	transitions, err := event.PublisherOf[*lifecycle.PlanItemTransition](events)
	if err != nil {
		return err
	}
	r.transitions = transitions
	activities, err := event.PublisherOf[*lifecycle.ActivityEvent](events)
	if err != nil {
		return err
	}
	r.activities = activities

	if err = event.SetListenerOf[*lifecycle.PlanItemTransition](events, func(e *event.Event[*lifecycle.PlanItemTransition]) {
		if err := r.syncListener.Handle(context.Background(), e.Data); err != nil {
			log.Printf("claimflow: lifecycle notification failed: %v", err)
		}
	}); err != nil {
		return err
	}
	return event.SetListenerOf[*lifecycle.ActivityEvent](events, func(e *event.Event[*lifecycle.ActivityEvent]) {
		if err := r.paymentListener.Handle(context.Background(), e.Data); err != nil {
			log.Printf("claimflow: payment notification failed: %v", err)
		}
	})
}

// Shutdown stops all listeners.
func (r *Runtime) Shutdown() {
	r.service.eventService.Shutdown()
}

// PublishTransition enqueues a plan-item lifecycle notification.
func (r *Runtime) PublishTransition(ctx context.Context, transition *lifecycle.PlanItemTransition) error {
	publisher := r.transitions
	if publisher == nil {
		var err error
		if publisher, err = event.PublisherOf[*lifecycle.PlanItemTransition](r.service.eventService); err != nil {
			return err
		}
		r.transitions = publisher
	}
	eventContext := &event.Context{
		RunID:     transition.RunID,
		Element:   transition.ElementName,
		EventType: "planItemTransition",
		Source:    "engine",
	}
	return publisher.Publish(ctx, event.NewEvent(eventContext, transition))
}

// PublishActivityEvent enqueues a payment sub-workflow notification.
func (r *Runtime) PublishActivityEvent(ctx context.Context, activity *lifecycle.ActivityEvent) error {
	publisher := r.activities
	if publisher == nil {
		var err error
		if publisher, err = event.PublisherOf[*lifecycle.ActivityEvent](r.service.eventService); err != nil {
			return err
		}
		r.activities = publisher
	}
	eventContext := &event.Context{
		RunID:     activity.ProcessID,
		Element:   activity.ActivityID,
		EventType: activity.EventName,
		Source:    "engine",
	}
	return publisher.Publish(ctx, event.NewEvent(eventContext, activity))
}

// HandleTransition applies a lifecycle notification synchronously,
// bypassing the queue. Intended for engine adapters that already provide
// their own delivery guarantees.
func (r *Runtime) HandleTransition(ctx context.Context, transition *lifecycle.PlanItemTransition) error {
	return r.syncListener.Handle(ctx, transition)
}

// HandleActivityEvent applies a payment notification synchronously.
func (r *Runtime) HandleActivityEvent(ctx context.Context, activity *lifecycle.ActivityEvent) error {
	return r.paymentListener.Handle(ctx, activity)
}
