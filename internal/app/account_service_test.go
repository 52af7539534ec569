package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
)

// accountRepoStub implements AccountRepository with overridable funcs.
type accountRepoStub struct {
	createAccountFn   func(ctx context.Context, email, username, passwordHash string, referredBy *uuid.UUID) (*domain.Account, error)
	findUserFn        func(ctx context.Context, email string) (*domain.User, error)
	findProfileFn     func(ctx context.Context, username string) (*domain.Profile, error)
	getAccountFn      func(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	getWalletFn       func(ctx context.Context, profileID uuid.UUID) (*domain.Wallet, error)
	createDepositFn   func(ctx context.Context, profileID uuid.UUID, amount int64, message string) (*domain.WalletTransaction, error)
	listTxnsFn        func(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.WalletTransaction, error)
	confirmDepositFn  func(ctx context.Context, reference string, referralThreshold, welcomeBonus int64) (*domain.WalletTransaction, int64, error)
	createDocumentFn  func(ctx context.Context, profileID uuid.UUID, documentType, fileName, notes string) (*domain.KYCDocument, error)
	listDocumentsFn   func(ctx context.Context, profileID uuid.UUID) ([]domain.KYCDocument, error)
	reviewDocumentFn  func(ctx context.Context, documentID uuid.UUID, approve bool, notes string, now time.Time) (*domain.KYCDocument, int, error)
}

func (s *accountRepoStub) CreateAccount(ctx context.Context, email, username, passwordHash string, referredBy *uuid.UUID) (*domain.Account, error) {
	return s.createAccountFn(ctx, email, username, passwordHash, referredBy)
}

func (s *accountRepoStub) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUserFn(ctx, email)
}

func (s *accountRepoStub) FindProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return s.findProfileFn(ctx, username)
}

func (s *accountRepoStub) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	return s.getAccountFn(ctx, userID)
}

func (s *accountRepoStub) GetWalletByProfileID(ctx context.Context, profileID uuid.UUID) (*domain.Wallet, error) {
	return s.getWalletFn(ctx, profileID)
}

func (s *accountRepoStub) CreateDeposit(ctx context.Context, profileID uuid.UUID, amount int64, message string) (*domain.WalletTransaction, error) {
	return s.createDepositFn(ctx, profileID, amount, message)
}

func (s *accountRepoStub) ListWalletTransactions(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	return s.listTxnsFn(ctx, profileID, limit)
}

func (s *accountRepoStub) ConfirmDeposit(ctx context.Context, reference string, referralThreshold, welcomeBonus int64) (*domain.WalletTransaction, int64, error) {
	return s.confirmDepositFn(ctx, reference, referralThreshold, welcomeBonus)
}

func (s *accountRepoStub) CreateDocument(ctx context.Context, profileID uuid.UUID, documentType, fileName, notes string) (*domain.KYCDocument, error) {
	return s.createDocumentFn(ctx, profileID, documentType, fileName, notes)
}

func (s *accountRepoStub) ListDocuments(ctx context.Context, profileID uuid.UUID) ([]domain.KYCDocument, error) {
	return s.listDocumentsFn(ctx, profileID)
}

func (s *accountRepoStub) ReviewDocument(ctx context.Context, documentID uuid.UUID, approve bool, notes string, now time.Time) (*domain.KYCDocument, int, error) {
	return s.reviewDocumentFn(ctx, documentID, approve, notes, now)
}

func newAccountService(repo *accountRepoStub) (*AccountService, *publisherStub) {
	producer := &publisherStub{}
	svc := NewAccountService(repo, producer, "events", AccountServiceConfig{
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		BcryptCost:        bcrypt.MinCost,
		ReferralThreshold: 10000,
		WelcomeBonus:      2500,
	}, testLogger())
	return svc, producer
}

func stubAccount(userID uuid.UUID) *domain.Account {
	return &domain.Account{
		User:    domain.User{ID: userID, Email: "user@example.com", Username: "investor"},
		Profile: domain.Profile{ID: uuid.New(), UserID: userID},
		Wallet:  domain.Wallet{ID: uuid.New()},
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAccountService(&accountRepoStub{})

	cases := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{"missing email", domain.RegisterRequest{Username: "investor", Password: "password123"}},
		{"malformed email", domain.RegisterRequest{Email: "not-an-email", Username: "investor", Password: "password123"}},
		{"short username", domain.RegisterRequest{Email: "a@b.com", Username: "ab", Password: "password123"}},
		{"short password", domain.RegisterRequest{Email: "a@b.com", Username: "investor", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestRegister_NormalizesEmailAndResolvesReferral(t *testing.T) {
	referrerID := uuid.New()
	userID := uuid.New()
	repo := &accountRepoStub{
		findProfileFn: func(_ context.Context, username string) (*domain.Profile, error) {
			if username != "referrer" {
				t.Fatalf("unexpected referral lookup %q", username)
			}
			return &domain.Profile{ID: referrerID}, nil
		},
		createAccountFn: func(_ context.Context, email, username, passwordHash string, referredBy *uuid.UUID) (*domain.Account, error) {
			if email != "user@example.com" {
				t.Fatalf("expected a lowercased trimmed email, got %q", email)
			}
			if referredBy == nil || *referredBy != referrerID {
				t.Fatalf("expected the referrer's profile id, got %v", referredBy)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("password123")); err != nil {
				t.Fatalf("stored hash does not match the password: %v", err)
			}
			return stubAccount(userID), nil
		},
	}
	svc, _ := newAccountService(repo)

	account, token, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:        "  User@Example.COM ",
		Username:     "investor",
		Password:     "password123",
		ReferralCode: "referrer",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if account.User.ID != userID {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestRegister_UnknownReferralCodeIgnored(t *testing.T) {
	repo := &accountRepoStub{
		findProfileFn: func(_ context.Context, _ string) (*domain.Profile, error) {
			return nil, store.ErrProfileNotFound
		},
		createAccountFn: func(_ context.Context, _, _, _ string, referredBy *uuid.UUID) (*domain.Account, error) {
			if referredBy != nil {
				t.Fatal("expected no referrer for an unknown code")
			}
			return stubAccount(uuid.New()), nil
		},
	}
	svc, _ := newAccountService(repo)

	_, _, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:        "a@b.com",
		Username:     "investor",
		Password:     "password123",
		ReferralCode: "ghost",
	})
	if err != nil {
		t.Fatalf("expected registration to succeed despite the unknown code, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	repo := &accountRepoStub{
		findUserFn: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: uuid.New(), PasswordHash: string(hash)}, nil
		},
	}
	svc, _ := newAccountService(repo)

	_, _, err = svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &accountRepoStub{
		findUserFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, store.ErrUserNotFound
		},
	}
	svc, _ := newAccountService(repo)

	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "whatever1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newAccountService(&accountRepoStub{})

	user := &domain.User{ID: uuid.New(), IsAdmin: true}
	profileID := uuid.New()

	token, err := svc.IssueToken(user, profileID)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if claims.ProfileID != profileID {
		t.Fatalf("expected profile id %s, got %s", profileID, claims.ProfileID)
	}
	if !claims.IsAdmin {
		t.Fatal("expected the admin flag to round-trip")
	}
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	svc, _ := newAccountService(&accountRepoStub{})
	other := NewAccountService(&accountRepoStub{}, nil, "events", AccountServiceConfig{
		JWTSecret: "different-secret",
		JWTExpiry: time.Hour,
	}, testLogger())

	token, err := other.IssueToken(&domain.User{ID: uuid.New()}, uuid.New())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatal("expected a token signed with another secret to be rejected")
	}
}

func TestDeposit_Validation(t *testing.T) {
	svc, _ := newAccountService(&accountRepoStub{})

	_, err := svc.Deposit(context.Background(), uuid.New(), domain.DepositRequest{Amount: 0})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error for a zero amount, got %v", err)
	}
}

func TestDeposit_DefaultMessage(t *testing.T) {
	repo := &accountRepoStub{
		createDepositFn: func(_ context.Context, _ uuid.UUID, amount int64, message string) (*domain.WalletTransaction, error) {
			if message != "Wallet deposit" {
				t.Fatalf("expected the default message, got %q", message)
			}
			return &domain.WalletTransaction{Amount: amount, Reference: "abc", Status: domain.TxnStatusPending}, nil
		},
	}
	svc, _ := newAccountService(repo)

	txn, err := svc.Deposit(context.Background(), uuid.New(), domain.DepositRequest{Amount: 5000})
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if txn.Status != domain.TxnStatusPending {
		t.Fatalf("expected a pending deposit, got %q", txn.Status)
	}
}

func TestConfirmDeposit_PassesThresholdsAndPublishes(t *testing.T) {
	repo := &accountRepoStub{
		confirmDepositFn: func(_ context.Context, reference string, referralThreshold, welcomeBonus int64) (*domain.WalletTransaction, int64, error) {
			if referralThreshold != 10000 || welcomeBonus != 2500 {
				t.Fatalf("unexpected thresholds %d/%d", referralThreshold, welcomeBonus)
			}
			return &domain.WalletTransaction{
				WalletID: uuid.New(), Amount: 20000, Reference: reference, Status: domain.TxnStatusCredit,
			}, 2500, nil
		},
	}
	svc, producer := newAccountService(repo)

	txn, bonus, err := svc.ConfirmDeposit(context.Background(), "ref123")
	if err != nil {
		t.Fatalf("ConfirmDeposit failed: %v", err)
	}
	if bonus != 2500 || txn.Status != domain.TxnStatusCredit {
		t.Fatalf("unexpected result txn=%+v bonus=%d", txn, bonus)
	}
	if len(producer.published) != 1 || producer.published[0].routingKey != domain.EventDepositCredited {
		t.Fatalf("expected one %s event, got %+v", domain.EventDepositCredited, producer.published)
	}
}

func TestUploadDocument_Validation(t *testing.T) {
	svc, _ := newAccountService(&accountRepoStub{})

	var verr *ValidationError
	_, err := svc.UploadDocument(context.Background(), uuid.New(), domain.UploadDocumentRequest{
		DocumentType: "selfie", FileName: "me.jpg",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected rejection of an unknown document type, got %v", err)
	}

	_, err = svc.UploadDocument(context.Background(), uuid.New(), domain.UploadDocumentRequest{
		DocumentType: domain.DocumentTypeID, FileName: "   ",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected rejection of a blank file name, got %v", err)
	}
}

func TestReviewDocument_PublishesResult(t *testing.T) {
	repo := &accountRepoStub{
		reviewDocumentFn: func(_ context.Context, documentID uuid.UUID, approve bool, _ string, _ time.Time) (*domain.KYCDocument, int, error) {
			if !approve {
				t.Fatal("expected an approval")
			}
			return &domain.KYCDocument{
				ID: documentID, ProfileID: uuid.New(),
				DocumentType: domain.DocumentTypeFinancial, Status: domain.DocumentApproved,
			}, 2, nil
		},
	}
	svc, producer := newAccountService(repo)

	doc, level, err := svc.ReviewDocument(context.Background(), uuid.New(), domain.ReviewDocumentRequest{Approve: true})
	if err != nil {
		t.Fatalf("ReviewDocument failed: %v", err)
	}
	if level != 2 || doc.Status != domain.DocumentApproved {
		t.Fatalf("unexpected result doc=%+v level=%d", doc, level)
	}
	if len(producer.published) != 1 || producer.published[0].routingKey != domain.EventKYCDocumentReviewed {
		t.Fatalf("expected one %s event, got %+v", domain.EventKYCDocumentReviewed, producer.published)
	}
}
