package event

import (
	"github.com/viant/claimflow/service/messaging/fs"
	"github.com/viant/claimflow/service/messaging/memory"
)

// Option customizes the event service.
type Option func(s *Service)

// WithNewFsQueueConfig sets the per-queue filesystem configuration factory.
func WithNewFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithNewMemoryQueueConfig sets the per-queue memory configuration factory.
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}
