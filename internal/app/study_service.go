package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"studybuddy/internal/model"
	"studybuddy/internal/pkg/qaparse"
	"studybuddy/internal/repository"
)

var (
	ErrInputEmpty   = errors.New("study text is empty")
	ErrUserNotFound = errors.New("user not found")
	ErrSetNotFound  = errors.New("flashcard set not found")
	ErrGenerator    = errors.New("ai service error")
)

const titleMaxRunes = 50

// Generator is the external text-to-QA collaborator.
type Generator interface {
	GenerateCards(ctx context.Context, text string) (string, error)
}

// ResponsePublisher enqueues raw generator responses for asynchronous
// persistence onto the chat session row.
type ResponsePublisher interface {
	Publish(ctx context.Context, update model.ResponseUpdate) error
}

// StatsCache caches the total registered user count for the dashboard.
type StatsCache interface {
	GetTotalUsers(ctx context.Context) (int64, bool, error)
	SetTotalUsers(ctx context.Context, total int64) error
}

type StudyService struct {
	userRepo      *repository.UserRepository
	sessionRepo   *repository.ChatSessionRepository
	flashcardRepo *repository.FlashcardRepository
	quota         *QuotaPolicy
	generator     Generator
	publisher     ResponsePublisher
	statsCache    StatsCache
	statsOffset   int
	statsRatio    float64
}

type StudyServiceOptions struct {
	StatsCache  StatsCache
	StatsOffset int
	StatsRatio  float64
}

func NewStudyService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.ChatSessionRepository,
	flashcardRepo *repository.FlashcardRepository,
	quota *QuotaPolicy,
	generator Generator,
	publisher ResponsePublisher,
	opts StudyServiceOptions,
) *StudyService {
	if opts.StatsOffset <= 0 {
		opts.StatsOffset = 1247
	}
	if opts.StatsRatio <= 0 {
		opts.StatsRatio = 0.73
	}
	return &StudyService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		flashcardRepo: flashcardRepo,
		quota:         quota,
		generator:     generator,
		publisher:     publisher,
		statsCache:    opts.StatsCache,
		statsOffset:   opts.StatsOffset,
		statsRatio:    opts.StatsRatio,
	}
}

// GenerateFromText runs the full workflow: quota check and lazy reset,
// session stub, generator call, parse, set persistence, quota decrement.
// A generator failure leaves the session stub dangling with no set; a
// persistence failure aborts before any decrement. Neither path rolls
// back earlier steps.
func (s *StudyService) GenerateFromText(ctx context.Context, userID uint, input string) (*model.FlashcardSet, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input) == "" {
		return nil, ErrInputEmpty
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.quota.EnsureToday(user); err != nil {
		return nil, err
	}
	if !s.quota.Allowed(user) {
		return nil, ErrQuotaExceeded
	}

	session := &model.ChatSession{
		UserID:    userID,
		UserInput: input,
		Title:     deriveTitle(input),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	raw, err := s.generator.GenerateCards(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerator, err)
	}

	if s.publisher != nil {
		update := model.ResponseUpdate{SessionID: session.ID, RawResponse: raw}
		if err := s.publisher.Publish(ctx, update); err != nil {
			// The raw response stays empty on the session row; the set
			// below is still built from the in-memory response.
			log.Printf("enqueue response persist failed for session %d: %v", session.ID, err)
		}
	}

	cards := qaparse.Parse(raw)
	set := &model.FlashcardSet{ChatSessionID: session.ID}
	records := make([]model.Flashcard, 0, len(cards))
	for _, card := range cards {
		records = append(records, model.Flashcard{
			Question: card.Question,
			Answer:   card.Answer,
		})
	}
	if err := s.flashcardRepo.CreateSetWithCards(set, records); err != nil {
		return nil, err
	}

	if err := s.quota.Consume(user); err != nil {
		return nil, err
	}
	return set, nil
}

type SetView struct {
	Set   *model.FlashcardSet `json:"set"`
	Title string              `json:"title"`
	Cards []model.Flashcard   `json:"cards"`
}

func (s *StudyService) GetSet(userID, setID uint) (*SetView, error) {
	if userID == 0 || setID == 0 {
		return nil, ErrInvalidInput
	}

	set, err := s.flashcardRepo.GetSetByIDAndUserID(setID, userID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, ErrSetNotFound
	}

	session, err := s.sessionRepo.GetByIDAndUserID(set.ChatSessionID, userID)
	if err != nil {
		return nil, err
	}
	title := ""
	if session != nil {
		title = session.Title
	}

	cards, err := s.flashcardRepo.ListCardsBySetID(set.ID)
	if err != nil {
		return nil, err
	}
	return &SetView{Set: set, Title: title, Cards: cards}, nil
}

type Dashboard struct {
	User             *model.User            `json:"user"`
	Sessions         []model.SessionSummary `json:"sessions"`
	TotalStudents    int64                  `json:"total_students"`
	AdvancedStudents int64                  `json:"advanced_students"`
}

// GetDashboard composes the dashboard payload. The student counters are
// display embellishments derived from the real user count plus a fixed
// offset, not analytics.
func (s *StudyService) GetDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.quota.EnsureToday(user); err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListSummariesByUserID(userID)
	if err != nil {
		return nil, err
	}

	total, err := s.totalUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalStudents := total + int64(s.statsOffset)
	advanced := int64(math.Floor(float64(totalStudents) * s.statsRatio))

	return &Dashboard{
		User:             user,
		Sessions:         sessions,
		TotalStudents:    totalStudents,
		AdvancedStudents: advanced,
	}, nil
}

type UpgradeResult struct {
	Email   string `json:"email"`
	Method  string `json:"method"`
	Message string `json:"message"`
}

// RequestUpgrade records the payment preference; the actual plan change
// is manual, via PromoteToPro.
func (s *StudyService) RequestUpgrade(userID uint, paymentMethod string) (*UpgradeResult, error) {
	method := strings.TrimSpace(paymentMethod)
	if userID == 0 || method == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.userRepo.SetPreferredPayment(userID, method); err != nil {
		return nil, err
	}

	return &UpgradeResult{
		Email:  user.Email,
		Method: method,
		Message: fmt.Sprintf(
			"Thank you! Our team will contact you shortly via email at %s to complete your Pro upgrade via %s.",
			user.Email, method,
		),
	}, nil
}

func (s *StudyService) PromoteToPro(targetUserID uint) error {
	if targetUserID == 0 {
		return ErrInvalidInput
	}
	updated, err := s.userRepo.PromoteToPro(targetUserID)
	if err != nil {
		return err
	}
	if !updated {
		return ErrUserNotFound
	}
	return nil
}

func (s *StudyService) totalUsers(ctx context.Context) (int64, error) {
	if s.statsCache != nil {
		if cached, hit, err := s.statsCache.GetTotalUsers(ctx); err == nil && hit {
			return cached, nil
		}
	}

	total, err := s.userRepo.Count()
	if err != nil {
		return 0, err
	}
	if s.statsCache != nil {
		if err := s.statsCache.SetTotalUsers(ctx, total); err != nil {
			log.Printf("cache total users failed: %v", err)
		}
	}
	return total, nil
}

// deriveTitle truncates the input to 50 runes with an ellipsis marker.
func deriveTitle(input string) string {
	runes := []rune(input)
	if len(runes) <= titleMaxRunes {
		return input
	}
	return string(runes[:titleMaxRunes]) + "..."
}
