package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dejargonator/dejargonator/internal/apperrors"
	"github.com/dejargonator/dejargonator/internal/models"
)

// QuotaType says which allowance an analysis consumes.
type QuotaType string

const (
	QuotaPro       QuotaType = "pro"
	QuotaCredit    QuotaType = "credit"
	QuotaFreeDaily QuotaType = "free_daily"
)

// QuotaDecision is the outcome of the gating rules for one analysis attempt.
type QuotaDecision struct {
	Allowed bool
	Type    QuotaType
}

// DecideQuota applies the gating rules: pro accounts are unlimited, paid
// credits come next, and everyone else gets one free analysis per UTC day.
// Pure so the rules are testable without a database.
func DecideQuota(isPro bool, credits int, lastFreeDate, today string) QuotaDecision {
	if isPro {
		return QuotaDecision{Allowed: true, Type: QuotaPro}
	}
	if credits > 0 {
		return QuotaDecision{Allowed: true, Type: QuotaCredit}
	}
	if lastFreeDate != today {
		return QuotaDecision{Allowed: true, Type: QuotaFreeDaily}
	}
	return QuotaDecision{}
}

// CreditService enforces the analysis quota against the profiles table.
type CreditService struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewCreditService(db *gorm.DB, logger *zap.Logger) *CreditService {
	return &CreditService{DB: db, logger: logger}
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Profile loads userID's profile, creating an empty one on first sight so a
// fresh account still gets its daily free analysis.
func (s *CreditService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("sign in to continue", nil)
	}

	var profile models.Profile
	err := s.DB.WithContext(ctx).
		Where(models.Profile{ID: userID}).
		Attrs(models.Profile{Email: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, apperrors.Unavailable("load profile", err)
	}
	return &profile, nil
}

// CanAnalyze reports whether userID may run one more analysis and which
// allowance it would consume.
func (s *CreditService) CanAnalyze(ctx context.Context, userID string) (QuotaDecision, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return QuotaDecision{}, err
	}

	decision := DecideQuota(profile.IsPro, profile.Credits, profile.LastFreeAnalysisDate, today())
	if !decision.Allowed {
		return decision, apperrors.QuotaExceeded(
			"no credits left and today's free analysis is used; upgrade or come back tomorrow", nil)
	}
	return decision, nil
}

// Consume records one analysis against the decided allowance: decrements a
// credit or stamps today's free slot. Pro consumes nothing.
func (s *CreditService) Consume(ctx context.Context, userID string, decision QuotaDecision) error {
	switch decision.Type {
	case QuotaPro:
		return nil
	case QuotaCredit:
		res := s.DB.WithContext(ctx).
			Model(&models.Profile{}).
			Where("id = ? AND credits > 0", userID).
			Update("credits", gorm.Expr("credits - 1"))
		if res.Error != nil {
			return apperrors.Unavailable("consume credit", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.QuotaExceeded("credit already spent", nil)
		}
		return nil
	case QuotaFreeDaily:
		err := s.DB.WithContext(ctx).
			Model(&models.Profile{}).
			Where("id = ?", userID).
			Update("last_free_analysis_date", today()).Error
		if err != nil {
			return apperrors.Unavailable("mark free analysis used", err)
		}
		return nil
	default:
		return apperrors.QuotaExceeded("analysis not allowed", nil)
	}
}

// AddCredits tops up userID's balance, e.g. after a purchase.
func (s *CreditService) AddCredits(ctx context.Context, userID string, n int) (*models.Profile, error) {
	if n <= 0 {
		return nil, apperrors.InvalidInput("credit amount must be positive", nil)
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).
		Model(profile).
		Update("credits", gorm.Expr("credits + ?", n)).Error
	if err != nil {
		return nil, apperrors.Unavailable("add credits", err)
	}

	profile.Credits += n
	s.logger.Info("credits added", zap.String("user", userID), zap.Int("amount", n))
	return profile, nil
}

// RequirePersona enforces the Pro gate on prompt personas: free accounts
// only get the friendly mentor.
func (s *CreditService) RequirePersona(profile *models.Profile, persona string) error {
	if persona == "" || persona == DefaultPersona {
		return nil
	}
	if profile == nil || !profile.IsPro {
		return apperrors.QuotaExceeded("this AI persona is a Pro feature; upgrade to unlock all personas", nil)
	}
	return nil
}

// RequirePro gates whole features (resume and cover-letter generation).
func (s *CreditService) RequirePro(profile *models.Profile) error {
	if profile == nil {
		return apperrors.Unauthenticated("sign in to continue", nil)
	}
	if !profile.IsPro {
		return apperrors.QuotaExceeded("document generation is a Pro feature", nil)
	}
	return nil
}
