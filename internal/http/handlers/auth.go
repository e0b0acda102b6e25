package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/config"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/http/middlewares"
	"github.com/meblomat/meblomat/internal/repo/postgres"
	"github.com/meblomat/meblomat/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

const trialDays = 14

// normalizeEmail keeps the stored address canonical so lookups and the
// unique constraint are case-insensitive in effect.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	sessions   *auth.Manager
}

func NewAuthHandler(users UserReader, userWriter UserWriter, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		sessions:   sessions,
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	AccountType string `json:"accountType" binding:"required,oneof=CARPENTER CLIENT"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	u := newAccount(normalizeEmail(req.Email), hash, user.AccountType(req.AccountType))

	created, err := h.userWriter.Create(cctx, u)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	s, err := h.sessions.Create(cctx, created.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.sessions.SetCookie(ctx, s)

	ctx.JSON(http.StatusCreated, gin.H{
		"user": created.Authenticated(),
	})
}

// newAccount applies the plan defaults per account type: carpenters start a
// professional trial, clients start on the free plan.
func newAccount(email, hash string, accountType user.AccountType) user.User {
	now := time.Now().UTC()

	u := user.User{
		Email:        email,
		PasswordHash: hash,
		AccountType:  accountType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch accountType {
	case user.AccountCarpenter:
		trialEnd := now.AddDate(0, 0, trialDays)

		u.Roles = []user.Role{user.RoleCarpenter}
		u.SubscriptionPlan = user.PlanCarpenterProfessional
		u.SubscriptionStatus = user.SubscriptionTrialing
		u.TrialStartedAt = &now
		u.TrialEndsAt = &trialEnd
	default:
		u.Roles = []user.Role{user.RoleClient}
		u.SubscriptionPlan = user.PlanClientFree
		u.SubscriptionStatus = user.SubscriptionActive
	}

	return u
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, normalizeEmail(req.Email))

	if err != nil {
		// same answer whether the email is unknown or the password is wrong
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	s, err := h.sessions.Create(cctx, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.sessions.SetCookie(ctx, s)

	ctx.JSON(http.StatusOK, gin.H{
		"user": foundUser.Authenticated(),
	})
}

// Logout is idempotent: an absent or unknown cookie still clears and answers
// 204.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token := h.sessions.TokenFromRequest(ctx)

	if token != "" {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		_ = h.sessions.Destroy(cctx, token)
	}

	h.sessions.ClearCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	identity, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Sign in to continue")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": identity})
}
