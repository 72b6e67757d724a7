package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type DashboardStats struct {
	TotalResidents     int64 `json:"totalResidents"`
	TotalStaff         int64 `json:"totalStaff"`
	DocumentRequests   int64 `json:"documentRequests"`
	ResolvedComplaints int64 `json:"resolvedComplaints"`
	PendingComplaints  int64 `json:"pendingComplaints"`
}

// ResidentDashboard carries the per-resident tallies the web dashboard
// renders. Pending and completed count document requests; active and
// resolved count complaints and inquiries. CommunityEngagement is the
// share of requests brought to completion, as a rounded percentage.
type ResidentDashboard struct {
	TotalRequests       int `json:"totalRequests"`
	Pending             int `json:"pending"`
	Completed           int `json:"completed"`
	ActiveIssues        int `json:"activeIssues"`
	IssuesResolved      int `json:"issuesResolved"`
	CommunityEngagement int `json:"communityEngagement"`
}

type StatsService struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	logger      *zap.Logger
}

func NewStatsService(
	users repository.UserRepository,
	submissions repository.SubmissionRepository,
	logger *zap.Logger,
) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatsService{users: users, submissions: submissions, logger: logger}
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	residents, err := s.users.CountByType(ctx, model.UserTypeResident)
	if err != nil {
		return nil, err
	}
	staff, err := s.users.CountByType(ctx, model.UserTypeStaff)
	if err != nil {
		return nil, err
	}

	documentType := model.SubmissionTypeDocument
	documents, err := s.submissions.Count(ctx, repository.SubmissionListFilter{SubmissionType: &documentType})
	if err != nil {
		return nil, err
	}

	complaintType := model.SubmissionTypeComplaint
	resolved := "Resolved"
	resolvedComplaints, err := s.submissions.Count(ctx, repository.SubmissionListFilter{
		SubmissionType: &complaintType,
		Status:         &resolved,
	})
	if err != nil {
		return nil, err
	}

	pending := statusPending
	pendingComplaints, err := s.submissions.Count(ctx, repository.SubmissionListFilter{
		SubmissionType: &complaintType,
		Status:         &pending,
	})
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalResidents:     residents,
		TotalStaff:         staff,
		DocumentRequests:   documents,
		ResolvedComplaints: resolvedComplaints,
		PendingComplaints:  pendingComplaints,
	}, nil
}

// ResidentDashboard tallies one resident's submissions in memory. The full
// set is loaded unpaginated; counting over a single page would skew every
// number for residents with more submissions than the page size.
func (s *StatsService) ResidentDashboard(ctx context.Context, email string) (*ResidentDashboard, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidSubmissionReq
	}

	items, err := s.submissions.ListAllByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	out := &ResidentDashboard{TotalRequests: len(items)}
	for _, item := range items {
		status := strings.ToLower(strings.TrimSpace(item.Status))
		switch strings.ToLower(strings.TrimSpace(item.SubmissionType)) {
		case "document":
			switch status {
			case "pending":
				out.Pending++
			case "completed":
				out.Completed++
			}
		case "complaint", "inquiry":
			switch status {
			case "active":
				out.ActiveIssues++
			case "resolved":
				out.IssuesResolved++
			}
		}
	}

	if out.TotalRequests > 0 {
		out.CommunityEngagement = int(math.Round(
			float64(out.Completed+out.IssuesResolved) / float64(out.TotalRequests) * 100,
		))
	}
	return out, nil
}
