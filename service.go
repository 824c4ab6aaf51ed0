package claimflow

import (
	"context"
	"log"
	"path"
	"time"

	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/policy"
	"github.com/viant/claimflow/model/user"
	"github.com/viant/claimflow/service/dao"
	claimmem "github.com/viant/claimflow/service/dao/claim/memory"
	policymem "github.com/viant/claimflow/service/dao/policy/memory"
	usermem "github.com/viant/claimflow/service/dao/user/memory"
	"github.com/viant/claimflow/service/engine"
	enginemem "github.com/viant/claimflow/service/engine/memory"
	"github.com/viant/claimflow/service/event"
	"github.com/viant/claimflow/service/messaging"
	"github.com/viant/claimflow/service/messaging/fs"
	"github.com/viant/claimflow/service/messaging/memory"
	"github.com/viant/claimflow/service/orchestrator"
	"github.com/viant/claimflow/service/payment"
	"github.com/viant/claimflow/service/resolver"
	"github.com/viant/claimflow/service/sync"
)

// ClaimDAO is the full claim persistence surface the service wires into the
// orchestrator, resolver and listeners.
type ClaimDAO interface {
	Load(ctx context.Context, id string) (*claim.Claim, error)
	Save(ctx context.Context, c *claim.Claim) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*claim.Claim, error)
	FindByCaseInstanceID(ctx context.Context, caseInstanceID string) (*claim.Claim, error)
	FindByClaimNumber(ctx context.Context, claimNumber string) (*claim.Claim, error)
	CountByStatus(ctx context.Context, status claim.Status) (int, error)
	CountCreatedAfter(ctx context.Context, after time.Time) (int, error)
}

// Service wires the claimflow components together.
type Service struct {
	runtime      *Runtime
	config       *Config
	claimDAO     ClaimDAO
	policyDAO    dao.Service[string, policy.Policy]
	userDAO      dao.Service[string, user.User]
	engine       engine.Service
	eventService *event.Service
}

// New builds a fully wired service. Without options everything runs
// in-process: memory DAOs, a recording engine stub and memory queues.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	resolverSvc := resolver.New(s.claimDAO)
	s.runtime.service = s
	s.runtime.resolver = resolverSvc
	s.runtime.syncListener = sync.New(s.claimDAO, resolverSvc, s.engine)
	s.runtime.paymentListener = payment.New(s.claimDAO, resolverSvc)
	s.runtime.orchestrator = orchestrator.New(s.claimDAO, s.policyDAO, s.userDAO, s.engine, s.config.Routing)
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.claimDAO == nil {
		s.claimDAO = claimmem.New()
	}
	if s.policyDAO == nil {
		s.policyDAO = policymem.New()
	}
	if s.userDAO == nil {
		s.userDAO = usermem.New()
	}
	if s.engine == nil {
		s.engine = enginemem.New()
	}
	if s.eventService == nil {
		eventService, err := event.New(messaging.Vendor(s.config.Queue.Vendor),
			event.WithNewMemoryQueueConfig(s.memoryQueueConfig),
			event.WithNewFsQueueConfig(s.fsQueueConfig))
		if err != nil {
			log.Printf("claimflow: falling back to memory queues: %v", err)
			eventService, _ = event.New(messaging.VendorMemory,
				event.WithNewMemoryQueueConfig(s.memoryQueueConfig))
		}
		s.eventService = eventService
	}
}

func (s *Service) memoryQueueConfig(name string) memory.Config {
	config := memory.DefaultConfig()
	if s.config.Queue.Buffer > 0 {
		config.QueueBuffer = s.config.Queue.Buffer
	}
	return config
}

func (s *Service) fsQueueConfig(name string) fs.Config {
	config := fs.DefaultConfig()
	if s.config.Queue.BasePath != "" {
		config.BasePath = path.Join(s.config.Queue.BasePath, name)
	}
	return config
}

// Runtime returns the runtime facade.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Orchestrator returns the claim operation service.
func (s *Service) Orchestrator() *orchestrator.Service {
	return s.runtime.orchestrator
}

// Events returns the notification event service.
func (s *Service) Events() *event.Service {
	return s.eventService
}
