/**
 * @description
 * This file contains the business logic for accounts: registration with atomic
 * user/profile/wallet provisioning and referral codes, login with JWT
 * issuance, wallet deposits with admin confirmation and the referral welcome
 * bonus, and the KYC document flow.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
	"github.com/TempBiGmIkE/Creypinvest-master/pkg/rabbitmq"
)

// AccountRepository defines the database operations the account service needs.
type AccountRepository interface {
	CreateAccount(ctx context.Context, email, username, passwordHash string, referredBy *uuid.UUID) (*domain.Account, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	GetWalletByProfileID(ctx context.Context, profileID uuid.UUID) (*domain.Wallet, error)
	CreateDeposit(ctx context.Context, profileID uuid.UUID, amount int64, message string) (*domain.WalletTransaction, error)
	ListWalletTransactions(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.WalletTransaction, error)
	ConfirmDeposit(ctx context.Context, reference string, referralThreshold, welcomeBonus int64) (*domain.WalletTransaction, int64, error)
	CreateDocument(ctx context.Context, profileID uuid.UUID, documentType, fileName, notes string) (*domain.KYCDocument, error)
	ListDocuments(ctx context.Context, profileID uuid.UUID) ([]domain.KYCDocument, error)
	ReviewDocument(ctx context.Context, documentID uuid.UUID, approve bool, notes string, now time.Time) (*domain.KYCDocument, int, error)
}

// Claims is the JWT payload issued at login and registration.
type Claims struct {
	ProfileID uuid.UUID `json:"pid"`
	IsAdmin   bool      `json:"adm"`
	jwt.RegisteredClaims
}

// AccountService provides the business logic for accounts, wallets and KYC.
type AccountService struct {
	repo     AccountRepository
	producer rabbitmq.Publisher
	exchange string
	logger   *slog.Logger

	jwtSecret  []byte
	jwtExpiry  time.Duration
	bcryptCost int

	referralThreshold int64
	welcomeBonus      int64
}

// AccountServiceConfig carries the knobs the account service needs.
type AccountServiceConfig struct {
	JWTSecret         string
	JWTExpiry         time.Duration
	BcryptCost        int
	ReferralThreshold int64
	WelcomeBonus      int64
}

// NewAccountService creates a new account service.
func NewAccountService(repo AccountRepository, producer rabbitmq.Publisher, exchange string, cfg AccountServiceConfig, logger *slog.Logger) *AccountService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{
		repo:              repo,
		producer:          producer,
		exchange:          exchange,
		logger:            logger,
		jwtSecret:         []byte(cfg.JWTSecret),
		jwtExpiry:         cfg.JWTExpiry,
		bcryptCost:        cost,
		referralThreshold: cfg.ReferralThreshold,
		welcomeBonus:      cfg.WelcomeBonus,
	}
}

func (s *AccountService) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, s.exchange, routingKey, body); err != nil {
		s.logger.Warn("event publish failed", "routing_key", routingKey, "error", err)
	}
}

// IssueToken signs an HS256 JWT for the user.
func (s *AccountService) IssueToken(user *domain.User, profileID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		ProfileID: profileID,
		IsAdmin:   user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseToken validates a bearer token and returns its claims.
func (s *AccountService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Register provisions a new account and returns it with a signed token.
// An unknown referral code is ignored rather than failing registration.
func (s *AccountService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, string, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", invalidf("email", "a valid email address is required")
	}
	if len(username) < 3 {
		return nil, "", invalidf("username", "must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return nil, "", invalidf("password", "must be at least 8 characters")
	}

	var referredBy *uuid.UUID
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		referrer, err := s.repo.FindProfileByUsername(ctx, code)
		switch {
		case err == nil:
			referredBy = &referrer.ID
		case errors.Is(err, store.ErrProfileNotFound):
			s.logger.Warn("unknown referral code ignored", "code", code)
		default:
			return nil, "", err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	account, err := s.repo.CreateAccount(ctx, email, username, string(hash), referredBy)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(&account.User, account.Profile.ID)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("account registered", "user_id", account.User.ID, "referred", referredBy != nil)
	return account, token, nil
}

// Login authenticates by email and password and returns the account with a
// signed token.
func (s *AccountService) Login(ctx context.Context, req domain.LoginRequest) (*domain.Account, string, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	account, err := s.repo.GetAccountByUserID(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	token, err := s.IssueToken(user, account.Profile.ID)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// GetAccount returns the caller's user, profile and wallet.
func (s *AccountService) GetAccount(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	return s.repo.GetAccountByUserID(ctx, userID)
}

// GetWallet returns the caller's wallet.
func (s *AccountService) GetWallet(ctx context.Context, profileID uuid.UUID) (*domain.Wallet, error) {
	return s.repo.GetWalletByProfileID(ctx, profileID)
}

// ListTransactions returns the caller's visible ledger entries, newest first.
func (s *AccountService) ListTransactions(ctx context.Context, profileID uuid.UUID) ([]domain.WalletTransaction, error) {
	return s.repo.ListWalletTransactions(ctx, profileID, 50)
}

// Deposit opens a pending wallet deposit. Funds only move once an admin
// confirms the reference.
func (s *AccountService) Deposit(ctx context.Context, profileID uuid.UUID, req domain.DepositRequest) (*domain.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, invalidf("amount", "must be positive")
	}
	message := req.Message
	if message == "" {
		message = "Wallet deposit"
	}
	txn, err := s.repo.CreateDeposit(ctx, profileID, req.Amount, message)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit opened", "profile_id", profileID, "reference", txn.Reference, "amount", txn.Amount)
	return txn, nil
}

// ConfirmDeposit settles a pending deposit by reference and applies the
// referral welcome bonus when its conditions are met.
func (s *AccountService) ConfirmDeposit(ctx context.Context, reference string) (*domain.WalletTransaction, int64, error) {
	txn, bonus, err := s.repo.ConfirmDeposit(ctx, reference, s.referralThreshold, s.welcomeBonus)
	if err != nil {
		return nil, 0, err
	}
	s.logger.Info("deposit confirmed", "reference", reference, "amount", txn.Amount, "bonus", bonus)
	s.publish(ctx, domain.EventDepositCredited, domain.DepositEvent{
		WalletID:  txn.WalletID,
		Amount:    txn.Amount,
		Reference: txn.Reference,
		Timestamp: time.Now().UTC(),
	})
	return txn, bonus, nil
}

// UploadDocument records KYC document metadata for review.
func (s *AccountService) UploadDocument(ctx context.Context, profileID uuid.UUID, req domain.UploadDocumentRequest) (*domain.KYCDocument, error) {
	if !contains(domain.DocumentTypes, req.DocumentType) {
		return nil, invalidf("document_type", "unknown document type %q", req.DocumentType)
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, invalidf("file_name", "is required")
	}
	return s.repo.CreateDocument(ctx, profileID, req.DocumentType, req.FileName, req.Notes)
}

// ListDocuments returns the caller's KYC uploads.
func (s *AccountService) ListDocuments(ctx context.Context, profileID uuid.UUID) ([]domain.KYCDocument, error) {
	return s.repo.ListDocuments(ctx, profileID)
}

// ReviewDocument applies an admin decision and reports the owner's resulting
// verification level.
func (s *AccountService) ReviewDocument(ctx context.Context, documentID uuid.UUID, req domain.ReviewDocumentRequest) (*domain.KYCDocument, int, error) {
	doc, level, err := s.repo.ReviewDocument(ctx, documentID, req.Approve, req.Notes, time.Now().UTC())
	if err != nil {
		return nil, 0, err
	}
	s.logger.Info("kyc document reviewed", "document_id", documentID, "status", doc.Status, "verification_level", level)
	s.publish(ctx, domain.EventKYCDocumentReviewed, domain.KYCReviewEvent{
		DocumentID:        doc.ID,
		ProfileID:         doc.ProfileID,
		Status:            doc.Status,
		VerificationLevel: level,
		Timestamp:         time.Now().UTC(),
	})
	return doc, level, nil
}
