package claimflow

import (
	"github.com/viant/claimflow/model/policy"
	"github.com/viant/claimflow/model/user"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/engine"
	"github.com/viant/claimflow/service/event"
	"github.com/viant/claimflow/service/orchestrator"
	"github.com/viant/claimflow/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customizes the claimflow service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithClaimDAO sets the claim persistence service.
func WithClaimDAO(claimDAO ClaimDAO) Option {
	return func(s *Service) {
		s.claimDAO = claimDAO
	}
}

// WithPolicyDAO sets the policy persistence service.
func WithPolicyDAO(policyDAO dao.Service[string, policy.Policy]) Option {
	return func(s *Service) {
		s.policyDAO = policyDAO
	}
}

// WithUserDAO sets the user persistence service.
func WithUserDAO(userDAO dao.Service[string, user.User]) Option {
	return func(s *Service) {
		s.userDAO = userDAO
	}
}

// WithEngine sets the external orchestration engine client.
func WithEngine(engineSvc engine.Service) Option {
	return func(s *Service) {
		s.engine = engineSvc
	}
}

// WithEventService sets the notification event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithRouting sets the task routing identities.
func WithRouting(routing orchestrator.Routing) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Routing = routing
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If
// outputFile is empty the stdout exporter is used; otherwise traces are
// written to the supplied file path. Safe to call multiple times; the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter (OTLP, Jaeger, Zipkin). Safe to call multiple times; the
// first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
