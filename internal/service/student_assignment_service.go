package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignments/internal/dto"
	"github.com/noah-isme/gema-assignments/internal/models"
	"github.com/noah-isme/gema-assignments/internal/observability"
	"github.com/noah-isme/gema-assignments/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the assignment does not exist or is not posted for the student's batch.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrStudentNotFound indicates the authenticated student has no record.
	ErrStudentNotFound = errors.New("student not found")
	// ErrInvalidListType indicates an unsupported list category.
	ErrInvalidListType = errors.New("invalid assignment list type")
	// ErrNotSubmitted indicates there is no submission to withdraw.
	ErrNotSubmitted = errors.New("assignment is not submitted")
	// ErrPastDue indicates the due timestamp has passed and the submission is final.
	ErrPastDue = errors.New("cannot unsubmit after the due timestamp")
	// ErrAlreadyGraded indicates the submission was graded and can no longer be withdrawn.
	ErrAlreadyGraded = errors.New("graded submissions cannot be unsubmitted")
)

// StudentAssignmentService lists a student's assignments by category and withdraws submissions.
type StudentAssignmentService interface {
	List(ctx context.Context, studentID uint, listType string) ([]dto.StudentAssignment, error)
	Unsubmit(ctx context.Context, studentID uint, assignmentID string) error
}

type studentAssignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	cache       *redis.Client
	cacheTTL    time.Duration
	events      AssignmentEventPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// StudentAssignmentDeps groups the collaborators of the service.
type StudentAssignmentDeps struct {
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Students    repository.StudentRepository
	Validator   *validator.Validate
	Cache       *redis.Client
	CacheTTL    time.Duration
	Events      AssignmentEventPublisher
	Logger      zerolog.Logger
	Now         func() time.Time
}

// NewStudentAssignmentService builds the service.
func NewStudentAssignmentService(deps StudentAssignmentDeps) StudentAssignmentService {
	validate := deps.Validator
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	events := deps.Events
	if events == nil {
		events = noopAssignmentPublisher{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &studentAssignmentService{
		assignments: deps.Assignments,
		submissions: deps.Submissions,
		students:    deps.Students,
		validator:   validate,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		events:      events,
		logger:      deps.Logger.With().Str("component", "student_assignment_service").Logger(),
		tracer:      observability.Tracer("internal/service/student_assignment"),
		now:         now,
	}
}

func listCacheKey(studentID uint, listType string) string {
	return fmt.Sprintf("assignments:student:%d:%s", studentID, listType)
}

func (s *studentAssignmentService) List(ctx context.Context, studentID uint, listType string) ([]dto.StudentAssignment, error) {
	listType = dto.NormalizeListType(listType)

	ctx, span := s.tracer.Start(ctx, "assignments.list", trace.WithAttributes(
		attribute.Int64("assignments.student_id", int64(studentID)),
		attribute.String("assignments.list_type", listType),
	))
	defer span.End()

	if err := s.validator.Struct(dto.AssignmentListRequest{ListType: listType}); err != nil {
		span.SetStatus(codes.Error, "invalid_list_type")
		return nil, ErrInvalidListType
	}

	cacheKey := listCacheKey(studentID, listType)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response []dto.StudentAssignment
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.AssignmentListCache().WithLabelValues(listType, "hit").Inc()
				span.SetAttributes(attribute.Bool("assignments.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read assignment list cache")
		}
		observability.AssignmentListCache().WithLabelValues(listType, "miss").Inc()
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "student_not_found")
			return nil, ErrStudentNotFound
		}
		span.SetStatus(codes.Error, "student_lookup_failed")
		return nil, fmt.Errorf("load student: %w", err)
	}

	assignments, err := s.assignments.ListForBatch(ctx, student.Batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_lookup_failed")
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	response := dto.NewStudentAssignmentSlice(categorize(assignments, studentID, listType, s.now()))
	span.SetAttributes(attribute.Int("assignments.count", len(response)))

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store assignment list cache")
			}
		}
	}

	return response, nil
}

// categorize keeps the assignments that fall into listType for the student.
func categorize(assignments []models.Assignment, studentID uint, listType string, now time.Time) []models.Assignment {
	result := make([]models.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if categoryOf(assignment, studentID, now) == listType {
			result = append(result, assignment)
		}
	}
	return result
}

func categoryOf(assignment models.Assignment, studentID uint, now time.Time) string {
	for _, submission := range assignment.Submissions {
		if submission.StudentID == studentID {
			return dto.ListTypeSubmitted
		}
	}
	if assignment.IsPastDue(now) {
		return dto.ListTypeMissed
	}
	return dto.ListTypePending
}

func (s *studentAssignmentService) Unsubmit(ctx context.Context, studentID uint, assignmentID string) error {
	ctx, span := s.tracer.Start(ctx, "assignments.unsubmit", trace.WithAttributes(
		attribute.Int64("assignments.student_id", int64(studentID)),
		attribute.String("assignments.assignment_id", assignmentID),
	))
	defer span.End()

	err := s.unsubmit(ctx, studentID, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, unsubmitResultLabel(err))
	}
	observability.AssignmentUnsubmits().WithLabelValues(unsubmitResultLabel(err)).Inc()
	return err
}

func (s *studentAssignmentService) unsubmit(ctx context.Context, studentID uint, assignmentID string) error {
	if err := s.validator.Struct(dto.UnsubmitRequest{AssignmentID: assignmentID, StudentID: studentID}); err != nil {
		return ErrAssignmentNotFound
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("load student: %w", err)
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("load assignment: %w", err)
	}
	if !student.Enrolled(assignment) {
		return ErrAssignmentNotFound
	}

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSubmitted
		}
		return fmt.Errorf("load submission: %w", err)
	}
	if submission.IsGraded() {
		return ErrAlreadyGraded
	}

	now := s.now()
	if assignment.IsPastDue(now) {
		return ErrPastDue
	}

	if err := s.submissions.DeleteByAssignmentAndStudent(ctx, assignmentID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSubmitted
		}
		return fmt.Errorf("delete submission: %w", err)
	}

	s.invalidate(ctx, studentID)

	event := dto.AssignmentUnsubmittedEvent{AssignmentID: assignmentID, StudentID: studentID, OccurredAt: now.UTC()}
	if err := s.events.PublishUnsubmitted(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("assignment_id", assignmentID).Msg("failed to publish unsubmit event")
	}

	s.logger.Info().Uint("student_id", studentID).Str("assignment_id", assignmentID).Msg("assignment unsubmitted")
	return nil
}

// invalidate drops every cached list of the student; an unsubmit moves an
// assignment from submitted to pending or missed.
func (s *studentAssignmentService) invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}

	keys := make([]string, 0, len(dto.ListTypes))
	for _, listType := range dto.ListTypes {
		keys = append(keys, listCacheKey(studentID, listType))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate assignment list cache")
	}
}

func unsubmitResultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAssignmentNotFound), errors.Is(err, ErrStudentNotFound):
		return "not_found"
	case errors.Is(err, ErrNotSubmitted):
		return "not_submitted"
	case errors.Is(err, ErrPastDue):
		return "past_due"
	case errors.Is(err, ErrAlreadyGraded):
		return "graded"
	default:
		return "error"
	}
}
