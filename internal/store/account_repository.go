/**
 * @description
 * This file provides the PostgreSQL repository for accounts: users, profiles,
 * wallets, the wallet ledger and KYC documents. Registration provisions the
 * user, profile and wallet in one transaction so a half-created account can
 * never be observed.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

const userColumns = `id, email, username, password_hash, is_admin, created_at`

const profileColumns = `
	id, user_id, phone_number, country, gender, referred_by, refer_clicks,
	verification_level, created_at, updated_at`

const walletColumns = `
	id, profile_id, balance, amount_invested, btc_address, pin_hash, created_at, updated_at`

const txnColumns = `id, wallet_id, amount, direction, status, reference, message, created_at`

const documentColumns = `
	id, profile_id, document_type, file_name, status, notes, uploaded_at, reviewed_at`

// AccountRepository is the PostgreSQL-backed store for users, wallets and KYC.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.PhoneNumber, &p.Country, &p.Gender, &p.ReferredBy,
		&p.ReferClicks, &p.VerificationLevel, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.ID, &w.ProfileID, &w.Balance, &w.AmountInvested,
		&w.BTCAddress, &w.PINHash, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Direction, &t.Status, &t.Reference, &t.Message, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanDocument(row pgx.Row) (*domain.KYCDocument, error) {
	var d domain.KYCDocument
	err := row.Scan(&d.ID, &d.ProfileID, &d.DocumentType, &d.FileName, &d.Status, &d.Notes, &d.UploadedAt, &d.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateAccount provisions a user, their profile and their wallet atomically.
// referredBy, when set, must be the referring profile's id.
func (r *AccountRepository) CreateAccount(ctx context.Context, email, username, passwordHash string, referredBy *uuid.UUID) (*domain.Account, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := scanUser(tx.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING `+userColumns,
		email, username, passwordHash,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	profile, err := scanProfile(tx.QueryRow(ctx,
		`INSERT INTO profiles (user_id, referred_by) VALUES ($1, $2) RETURNING `+profileColumns,
		user.ID, referredBy,
	))
	if err != nil {
		return nil, err
	}

	wallet, err := scanWallet(tx.QueryRow(ctx,
		`INSERT INTO wallets (profile_id) VALUES ($1) RETURNING `+walletColumns,
		profile.ID,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &domain.Account{User: *user, Profile: *profile, Wallet: *wallet}, nil
}

// FindUserByEmail retrieves a user by email, password hash included, for login.
func (r *AccountRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// FindProfileByUsername resolves a referral code (the referrer's username).
func (r *AccountRepository) FindProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE lower(u.username) = lower($1)`,
		username,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetProfileByUserID retrieves the profile owned by a user.
func (r *AccountRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetAccountByUserID loads the user with their profile and wallet.
func (r *AccountRepository) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	p, err := r.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	w, err := r.GetWalletByProfileID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Account{User: *u, Profile: *p, Wallet: *w}, nil
}

// GetWalletByProfileID retrieves a wallet by its owning profile.
func (r *AccountRepository) GetWalletByProfileID(ctx context.Context, profileID uuid.UUID) (*domain.Wallet, error) {
	w, err := scanWallet(r.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE profile_id = $1`, profileID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

// CreateDeposit opens a pending credit on the wallet ledger. The balance does
// not move until an admin confirms the deposit.
func (r *AccountRepository) CreateDeposit(ctx context.Context, profileID uuid.UUID, amount int64, message string) (*domain.WalletTransaction, error) {
	w, err := r.GetWalletByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(r.db.QueryRow(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount, direction, status, reference, message)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+txnColumns,
		w.ID, amount, domain.DirectionCredit, domain.TxnStatusPending, domain.NewTransactionReference(), message,
	))
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListWalletTransactions returns the wallet's ledger newest first, excluding
// hidden entries.
func (r *AccountRepository) ListWalletTransactions(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	w, err := r.GetWalletByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+txnColumns+`
		 FROM wallet_transactions
		 WHERE wallet_id = $1 AND status <> $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		w.ID, domain.TxnStatusHidden, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []domain.WalletTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// ConfirmDeposit settles a pending deposit by reference: credits the wallet
// under a row lock and, for the first settled deposit of a referred user at or
// above the threshold, also credits the welcome bonus. Returns the settled
// transaction and the bonus amount granted (zero if none).
func (r *AccountRepository) ConfirmDeposit(ctx context.Context, reference string, referralThreshold, welcomeBonus int64) (*domain.WalletTransaction, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	deposit, err := scanTransaction(tx.QueryRow(ctx,
		`SELECT `+txnColumns+`
		 FROM wallet_transactions
		 WHERE reference = $1 AND direction = $2
		 FOR UPDATE`,
		reference, domain.DirectionCredit,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, ErrTransactionNotFound
		}
		return nil, 0, err
	}
	if deposit.Status != domain.TxnStatusPending {
		return nil, 0, ErrInvalidStatus
	}

	var referredBy *uuid.UUID
	var priorSettled int
	err = tx.QueryRow(ctx,
		`SELECT p.referred_by,
		        (SELECT COUNT(*) FROM wallet_transactions t
		          WHERE t.wallet_id = w.id AND t.direction = $2 AND t.status = $3)
		 FROM wallets w
		 JOIN profiles p ON p.id = w.profile_id
		 WHERE w.id = $1
		 FOR UPDATE OF w`,
		deposit.WalletID, domain.DirectionCredit, domain.TxnStatusCredit,
	).Scan(&referredBy, &priorSettled)
	if err != nil {
		return nil, 0, err
	}

	settled, err := scanTransaction(tx.QueryRow(ctx,
		`UPDATE wallet_transactions SET status = $2 WHERE id = $1 RETURNING `+txnColumns,
		deposit.ID, domain.TxnStatusCredit,
	))
	if err != nil {
		return nil, 0, err
	}

	credit := deposit.Amount
	var bonus int64
	if referredBy != nil && priorSettled == 0 && deposit.Amount >= referralThreshold {
		bonus = welcomeBonus
		credit += bonus
		_, err = tx.Exec(ctx,
			`INSERT INTO wallet_transactions (wallet_id, amount, direction, status, reference, message)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			deposit.WalletID, bonus, domain.DirectionCredit, domain.TxnStatusCredit,
			domain.NewTransactionReference(), "referral welcome bonus",
		)
		if err != nil {
			return nil, 0, err
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE id = $1`,
		deposit.WalletID, credit,
	)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return settled, bonus, nil
}

// ExpirePendingDeposits fails every pending deposit created before the cutoff
// and returns how many were expired.
func (r *AccountRepository) ExpirePendingDeposits(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE wallet_transactions
		 SET status = $1, message = message || ' (expired)'
		 WHERE direction = $2 AND status = $3 AND created_at < $4`,
		domain.TxnStatusFailed, domain.DirectionCredit, domain.TxnStatusPending, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CreateDocument records KYC document metadata as pending review.
func (r *AccountRepository) CreateDocument(ctx context.Context, profileID uuid.UUID, documentType, fileName, notes string) (*domain.KYCDocument, error) {
	d, err := scanDocument(r.db.QueryRow(ctx,
		`INSERT INTO kyc_documents (profile_id, document_type, file_name, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+documentColumns,
		profileID, documentType, fileName, notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListDocuments returns the profile's KYC uploads, newest first.
func (r *AccountRepository) ListDocuments(ctx context.Context, profileID uuid.UUID) ([]domain.KYCDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+`
		 FROM kyc_documents
		 WHERE profile_id = $1
		 ORDER BY uploaded_at DESC`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.KYCDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// ReviewDocument applies an admin decision to a pending document and
// recomputes the owner's verification level from all approved document types.
// Returns the reviewed document and the resulting level.
func (r *AccountRepository) ReviewDocument(ctx context.Context, documentID uuid.UUID, approve bool, notes string, now time.Time) (*domain.KYCDocument, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	current, err := scanDocument(tx.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM kyc_documents WHERE id = $1 FOR UPDATE`,
		documentID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, ErrDocumentNotFound
		}
		return nil, 0, err
	}
	if current.Status != domain.DocumentPending {
		return nil, 0, ErrInvalidStatus
	}

	status := domain.DocumentRejected
	if approve {
		status = domain.DocumentApproved
	}
	reviewed, err := scanDocument(tx.QueryRow(ctx,
		`UPDATE kyc_documents SET status = $2, notes = $3, reviewed_at = $4
		 WHERE id = $1
		 RETURNING `+documentColumns,
		documentID, status, notes, now,
	))
	if err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx,
		`SELECT DISTINCT document_type FROM kyc_documents WHERE profile_id = $1 AND status = $2`,
		current.ProfileID, domain.DocumentApproved,
	)
	if err != nil {
		return nil, 0, err
	}
	approvedTypes := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return nil, 0, err
		}
		approvedTypes = append(approvedTypes, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	level := domain.VerificationLevelFor(approvedTypes)
	_, err = tx.Exec(ctx,
		`UPDATE profiles SET verification_level = $2, updated_at = NOW() WHERE id = $1`,
		current.ProfileID, level,
	)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return reviewed, level, nil
}
