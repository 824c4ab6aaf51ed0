// Package memory provides a recording in-process engine used by tests and
// default wiring. It tracks started instances, completed tasks and
// terminations, and supports failure injection so orchestrator error paths
// can be exercised without a live engine.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/claimflow/internal/idgen"
	"github.com/viant/claimflow/service/engine"
)

// TaskCompletion records a single CompleteTask call.
type TaskCompletion struct {
	RunID             string
	TaskDefinitionKey string
	Variables         map[string]interface{}
}

// Instance is a recorded case instance run.
type Instance struct {
	ID            string
	DefinitionKey string
	BusinessKey   string
	Variables     map[string]interface{}
	Terminated    bool
}

// Service implements engine.Service in memory.
type Service struct {
	mux         sync.RWMutex
	instances   map[string]*Instance
	completions []TaskCompletion

	// activeTasks maps runID -> set of task definition keys currently
	// active; CompleteTask consumes one. When a run has no entry every task
	// key is treated as active, which keeps simple tests terse.
	activeTasks map[string]map[string]bool

	startErr     error
	completeErr  error
	terminateErr error
}

var _ engine.Service = (*Service)(nil)

// New constructor.
func New() *Service {
	return &Service{
		instances:   make(map[string]*Instance),
		activeTasks: make(map[string]map[string]bool),
	}
}

// FailStart makes subsequent StartCaseInstance calls fail with err.
func (s *Service) FailStart(err error) { s.startErr = err }

// FailCompleteTask makes subsequent CompleteTask calls fail with err.
func (s *Service) FailCompleteTask(err error) { s.completeErr = err }

// FailTerminate makes subsequent TerminateCaseInstance calls fail with err.
func (s *Service) FailTerminate(err error) { s.terminateErr = err }

// ActivateTask marks a task definition key active on a run; once any task
// has been activated explicitly, only activated keys complete.
func (s *Service) ActivateTask(runID, taskDefinitionKey string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	tasks, ok := s.activeTasks[runID]
	if !ok {
		tasks = make(map[string]bool)
		s.activeTasks[runID] = tasks
	}
	tasks[taskDefinitionKey] = true
}

// StartCaseInstance records a new run and returns its id.
func (s *Service) StartCaseInstance(_ context.Context, definitionKey, businessKey string, variables map[string]interface{}) (string, error) {
	if s.startErr != nil {
		return "", s.startErr
	}
	id := idgen.New()
	s.mux.Lock()
	defer s.mux.Unlock()
	s.instances[id] = &Instance{
		ID:            id,
		DefinitionKey: definitionKey,
		BusinessKey:   businessKey,
		Variables:     cloneVariables(variables),
	}
	return id, nil
}

// CompleteTask records the completion or fails with engine.ErrNoActiveTask.
func (s *Service) CompleteTask(_ context.Context, runID, taskDefinitionKey string, variables map[string]interface{}) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.instances[runID]; !ok {
		return fmt.Errorf("%w: %v", engine.ErrInstanceNotFound, runID)
	}
	if tasks, ok := s.activeTasks[runID]; ok {
		if !tasks[taskDefinitionKey] {
			return fmt.Errorf("%w: %v on run %v", engine.ErrNoActiveTask, taskDefinitionKey, runID)
		}
		delete(tasks, taskDefinitionKey)
	}
	s.completions = append(s.completions, TaskCompletion{
		RunID:             runID,
		TaskDefinitionKey: taskDefinitionKey,
		Variables:         cloneVariables(variables),
	})
	return nil
}

// SetVariables merges variables into a live run.
func (s *Service) SetVariables(_ context.Context, runID string, variables map[string]interface{}) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	instance, ok := s.instances[runID]
	if !ok {
		return fmt.Errorf("%w: %v", engine.ErrInstanceNotFound, runID)
	}
	if instance.Variables == nil {
		instance.Variables = make(map[string]interface{})
	}
	for k, v := range variables {
		instance.Variables[k] = v
	}
	return nil
}

// TerminateCaseInstance marks a run terminated.
func (s *Service) TerminateCaseInstance(_ context.Context, runID string) error {
	if s.terminateErr != nil {
		return s.terminateErr
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	instance, ok := s.instances[runID]
	if !ok {
		return fmt.Errorf("%w: %v", engine.ErrInstanceNotFound, runID)
	}
	instance.Terminated = true
	return nil
}

// Instance returns a recorded run by id.
func (s *Service) Instance(runID string) *Instance {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.instances[runID]
}

// Completions returns a copy of all recorded task completions.
func (s *Service) Completions() []TaskCompletion {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]TaskCompletion, len(s.completions))
	copy(out, s.completions)
	return out
}

// CompletionsOf returns completions for the given task definition key.
func (s *Service) CompletionsOf(taskDefinitionKey string) []TaskCompletion {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var out []TaskCompletion
	for _, completion := range s.completions {
		if completion.TaskDefinitionKey == taskDefinitionKey {
			out = append(out, completion)
		}
	}
	return out
}

func cloneVariables(variables map[string]interface{}) map[string]interface{} {
	if variables == nil {
		return nil
	}
	out := make(map[string]interface{}, len(variables))
	for k, v := range variables {
		out[k] = v
	}
	return out
}
