// Package tools is the request/response boundary over the train planner.
// Every operation returns a document with a success flag; planner failures
// become an error string in that document rather than a Go error.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/RevCBH/mergetrain/internal/logger"
	"github.com/RevCBH/mergetrain/internal/playbook"
	"github.com/RevCBH/mergetrain/internal/train"
)

// PlanArgs are the inputs of plan_merge_forward.
type PlanArgs struct {
	FromBranch string   `json:"from_branch"`
	ToBranches []string `json:"to_branches"`
}

// ContextArgs are the inputs of gather_merge_context. Nil optional fields
// take the service defaults.
type ContextArgs struct {
	IntoBranch     string `json:"into_branch"`
	MergeBranch    string `json:"merge_branch"`
	IncludeDetails *bool  `json:"include_details,omitempty"`
	MaxCommits     *int   `json:"max_commits,omitempty"`
	MaxFiles       *int   `json:"max_files,omitempty"`
}

// PlanResponse carries either the plan fields or an error.
type PlanResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*train.MergePlan
}

// ContextResponse carries either the context fields or an error.
type ContextResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*train.MergeContext
}

// PlaybookResponse carries the conflict resolution playbook.
type PlaybookResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*playbook.Playbook
}

// Service answers tool requests against one repository.
type Service struct {
	planner  *train.Planner
	playbook *playbook.Playbook
	defaults train.ContextOptions
	timeout  time.Duration
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithContextDefaults sets the caps used when a request omits them.
func WithContextDefaults(maxCommits, maxFiles int) Option {
	return func(s *Service) {
		s.defaults.MaxCommits = maxCommits
		s.defaults.MaxFiles = maxFiles
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a Service. A nil playbook makes get_playbook report
// an error.
func NewService(planner *train.Planner, pb *playbook.Playbook, opts ...Option) *Service {
	s := &Service{
		planner:  planner,
		playbook: pb,
		defaults: train.DefaultContextOptions(),
		log:      logger.With("component", "tools"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// Plan plans a merge train from args.FromBranch through args.ToBranches.
func (s *Service) Plan(ctx context.Context, args PlanArgs) PlanResponse {
	if args.FromBranch == "" {
		return PlanResponse{Error: "from_branch is required"}
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	plan, err := s.planner.Plan(ctx, args.FromBranch, args.ToBranches)
	if err == nil {
		// Commit counts degrade to zero on failure, so an expired context
		// can still produce a plan. Don't report it.
		err = ctx.Err()
	}
	if err != nil {
		s.logFailure("plan", err)
		return PlanResponse{Error: describe(ctx, err)}
	}
	return PlanResponse{Success: true, MergePlan: plan}
}

// Context reports the divergence between args.IntoBranch and args.MergeBranch.
func (s *Service) Context(ctx context.Context, args ContextArgs) ContextResponse {
	if args.IntoBranch == "" || args.MergeBranch == "" {
		return ContextResponse{Error: "into_branch and merge_branch are required"}
	}

	opts := s.ContextOptions(args)

	ctx, cancel := s.bound(ctx)
	defer cancel()

	mc, err := s.planner.GatherContext(ctx, args.IntoBranch, args.MergeBranch, opts)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.logFailure("context", err)
		return ContextResponse{Error: describe(ctx, err)}
	}
	return ContextResponse{Success: true, MergeContext: mc}
}

// ContextOptions resolves args against the service defaults.
func (s *Service) ContextOptions(args ContextArgs) train.ContextOptions {
	opts := s.defaults
	if args.IncludeDetails != nil {
		opts.IncludeDetails = *args.IncludeDetails
	}
	if args.MaxCommits != nil {
		opts.MaxCommits = *args.MaxCommits
	}
	if args.MaxFiles != nil {
		opts.MaxFiles = *args.MaxFiles
	}
	return opts
}

// Playbook returns the conflict resolution playbook.
func (s *Service) Playbook() PlaybookResponse {
	if s.playbook == nil {
		return PlaybookResponse{Error: "playbook not loaded"}
	}
	return PlaybookResponse{Success: true, Playbook: s.playbook}
}

func (s *Service) logFailure(op string, err error) {
	if train.IsValidation(err) {
		s.log.Info(op+" rejected", "reason", err)
		return
	}
	s.log.Warn(op+" failed", "error", err)
}

// describe prefixes the error when the request ran out of time, since the
// underlying git failure alone reads like a repository problem.
func describe(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "query timed out: " + err.Error()
	}
	return err.Error()
}
