package services

import (
	"context"
	"fmt"
	"time"

	"mazadly/internal/caching"
	"mazadly/internal/models"
	"mazadly/internal/repositories"
)

// maxNoticeLogins: established accounts stop seeing completion banners.
const maxNoticeLogins = 5

// postponeTTL bounds how long a session-scoped postpone can outlive its login
// session in Redis; the login-count comparison is the real scope check.
const postponeTTL = 24 * time.Hour

// noticeVariants is the banner configuration table. One generic renderer
// consumes these instead of per-variant display code.
var noticeVariants = map[models.NoticeKind]models.Notice{
	models.NoticeMissingFields: {
		Kind:     models.NoticeMissingFields,
		Icon:     "user-pen",
		Title:    "Complétez votre profil",
		Message:  "Renseignez vos informations personnelles et professionnelles pour débloquer toutes les fonctionnalités.",
		Gradient: "linear-gradient(135deg, #667eea, #764ba2)",
		Action:   models.ActionGoToSettings,
	},
	models.NoticeNoIdentity: {
		Kind:     models.NoticeNoIdentity,
		Icon:     "id-card",
		Title:    "Vérifiez votre identité",
		Message:  "Déposez vos documents d'identité pour pouvoir participer aux enchères.",
		Gradient: "linear-gradient(135deg, #f093fb, #f5576c)",
		Action:   models.ActionGoToSettings,
	},
	models.NoticePendingReview: {
		Kind:     models.NoticePendingReview,
		Icon:     "hourglass",
		Title:    "Documents en cours de vérification",
		Message:  "Vos documents ont bien été reçus et sont en cours d'examen.",
		Gradient: "linear-gradient(135deg, #4facfe, #00f2fe)",
		Action:   models.ActionDismiss,
	},
	models.NoticeNotCertified: {
		Kind:     models.NoticeNotCertified,
		Icon:     "award",
		Title:    "Obtenez votre certification",
		Message:  "Votre compte est vérifié. Demandez la certification pour renforcer la confiance des acheteurs.",
		Gradient: "linear-gradient(135deg, #43e97b, #38f9d7)",
		Action:   models.ActionGoToSettings,
	},
	models.NoticeComplete: {
		Kind:     models.NoticeComplete,
		Icon:     "party-popper",
		Title:    "Profil complet",
		Message:  "Félicitations, votre profil est complet et certifié !",
		Gradient: "linear-gradient(135deg, #fa709a, #fee140)",
		Action:   models.ActionDismiss,
	},
}

// ClassifyProfile picks the banner variant for a user. Variants are mutually
// exclusive, resolved in priority order.
func ClassifyProfile(user *models.User) models.NoticeKind {
	switch {
	case hasMissingFields(user):
		return models.NoticeMissingFields
	case !user.IsHasIdentity:
		return models.NoticeNoIdentity
	case !user.IsVerified:
		return models.NoticePendingReview
	case !user.IsCertified:
		return models.NoticeNotCertified
	default:
		return models.NoticeComplete
	}
}

func hasMissingFields(user *models.User) bool {
	if user.FirstName == "" || user.LastName == "" || user.Phone == "" || user.Wilaya == "" {
		return true
	}
	if user.Type == models.UserTypeCompany {
		if user.CompanyName == nil || *user.CompanyName == "" {
			return true
		}
		if user.ActivitySector == nil || *user.ActivitySector == "" {
			return true
		}
	}
	return false
}

// ProfileNoticeService decides which profile-completion banner, if any, a
// user should see, and manages postpone/dismiss state.
type ProfileNoticeService interface {
	NoticeFor(ctx context.Context, user *models.User) (*models.Notice, error)
	Postpone(ctx context.Context, user *models.User) error
	Dismiss(ctx context.Context, user *models.User) error
}

type profileNoticeService struct {
	userRepo     repositories.UserRepository
	cacheService caching.CacheService
}

func NewProfileNoticeService(userRepo repositories.UserRepository, cacheService caching.CacheService) ProfileNoticeService {
	return &profileNoticeService{
		userRepo:     userRepo,
		cacheService: cacheService,
	}
}

// NoticeFor returns nil when no banner applies: permanently dismissed,
// established account, or postponed during the current login session. The
// postpone record stores the login count it was issued under; a later login
// bumps the live count and the comparison fails, re-arming the banner.
func (s *profileNoticeService) NoticeFor(ctx context.Context, user *models.User) (*models.Notice, error) {
	if user.ProfileCompletionNote.Dismissed {
		return nil, nil
	}
	if user.LoginCount > maxNoticeLogins {
		return nil, nil
	}

	postponedAt, found, err := s.cacheService.GetPostponedLoginCount(ctx, user.ID)
	if err != nil {
		// Cache errors shouldn't suppress or fail the banner decision
		fmt.Printf("Cache error for notice postpone %s: %v\n", user.ID.String(), err)
	} else if found && postponedAt == user.LoginCount {
		return nil, nil
	}

	notice := noticeVariants[ClassifyProfile(user)]
	return &notice, nil
}

// Postpone hides the banner for the remainder of the current login session.
func (s *profileNoticeService) Postpone(ctx context.Context, user *models.User) error {
	if err := s.cacheService.SetPostponedLoginCount(ctx, user.ID, user.LoginCount, postponeTTL); err != nil {
		return fmt.Errorf("failed to record postpone: %w", err)
	}
	if err := s.userRepo.IncrementNotePostponed(ctx, user.ID); err != nil {
		return err
	}
	return nil
}

// Dismiss permanently hides the banner. The persistence call is awaited
// before the dismissal takes effect; on error the caller must keep the banner
// visible rather than hiding it optimistically.
func (s *profileNoticeService) Dismiss(ctx context.Context, user *models.User) error {
	if err := s.userRepo.DismissCompletionNote(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to persist dismissal: %w", err)
	}
	user.ProfileCompletionNote.Dismissed = true
	return nil
}
