package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"st-blogs/internal/domain"
	"st-blogs/internal/email"
	"st-blogs/internal/repository"
)

// ResetTokenIssuer firma y valida los tokens del link de reset de contraseña.
type ResetTokenIssuer interface {
	IssueResetToken(user domain.User) (string, error)
	ParseResetToken(token string) (string, error)
}

// UserService coordina reglas de negocio para usuarios: signup con OTP,
// login por contraseña u OTP, login federado y reset de contraseña.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	resetTokens ResetTokenIssuer
	clientURL   string
	otpLimiter  OTPRateLimiter
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	emailSender email.Sender,
	resetTokens ResetTokenIssuer,
	clientURL string,
	otpLimiter OTPRateLimiter,
) *UserService {
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(10*time.Minute, 3)
	}
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		resetTokens: resetTokens,
		clientURL:   strings.TrimRight(clientURL, "/"),
		otpLimiter:  otpLimiter,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrFederatedInvalid   = errors.New("federated profile invalid")
	ErrResetTokenInvalid  = errors.New("reset token invalid")
)

// otpTTL es la ventana de validez de un código OTP.
const otpTTL = 5 * time.Minute

// Signup registra un usuario sin verificar y le envía un OTP de 6 dígitos.
func (s *UserService) Signup(ctx context.Context, name, emailAddr, password string) error {
	emailAddr = normalizeEmail(emailAddr)
	name = strings.TrimSpace(name)
	password = strings.TrimSpace(password)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrInvalidCredentials
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	code, hash, expiresAt, err := generateOTP()
	if err != nil {
		return err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		OtpCodeHash:  hash,
		OtpExpiresAt: &expiresAt,
		IsVerified:   false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return err
	}

	return s.dispatchOTP(ctx, emailAddr, code, expiresAt)
}

// SendLoginOTP emite un OTP para el login sin contraseña. El usuario debe
// existir; una nueva emisión pisa el desafío anterior.
func (s *UserService) SendLoginOTP(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	code, hash, expiresAt, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.users.UpdateOTP(ctx, user.ID, hash, expiresAt); err != nil {
		return err
	}

	return s.dispatchOTP(ctx, emailAddr, code, expiresAt)
}

// VerifyOTP consume el desafío vigente: al validar limpia los campos OTP y
// marca el email como verificado. Un segundo intento con el mismo código
// falla porque ya no hay desafío.
func (s *UserService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if user.OtpCodeHash == "" || user.OtpExpiresAt == nil {
		return domain.User{}, ErrOTPExpired
	}
	if time.Now().UTC().After(*user.OtpExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !verifyOTP(code, user.OtpCodeHash) {
		return domain.User{}, ErrOTPInvalid
	}

	if err := s.users.VerifyEmail(ctx, user.ID); err != nil {
		return domain.User{}, err
	}

	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	user.IsVerified = true
	return user, nil
}

// Login autentica por email y contraseña. Un usuario sin verificar no puede
// loguearse aunque la contraseña sea correcta.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if !user.IsVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FederatedInput es el perfil normalizado que entrega un proveedor OAuth.
type FederatedInput struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// FederatedLogin resuelve un perfil OAuth a un usuario local: por id de
// proveedor, después por email, y si no existe lo crea verificado y sin
// contraseña. Sin email recuperable no se puede crear la cuenta.
func (s *UserService) FederatedLogin(ctx context.Context, input FederatedInput) (domain.User, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	subject := strings.TrimSpace(input.Subject)
	emailAddr := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	if provider == "" || subject == "" {
		return domain.User{}, ErrFederatedInvalid
	}

	user, err := s.users.GetByProvider(ctx, provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if emailAddr == "" {
		return domain.User{}, ErrFederatedInvalid
	}

	existing, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		if err := s.users.LinkProvider(ctx, existing.ID, provider, subject); err != nil {
			return domain.User{}, err
		}
		if !existing.IsVerified {
			if err := s.users.VerifyEmail(ctx, existing.ID); err != nil {
				return domain.User{}, err
			}
			existing.IsVerified = true
			existing.OtpCodeHash = ""
			existing.OtpExpiresAt = nil
		}
		setProviderID(&existing, provider, subject)
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	user = domain.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      emailAddr,
		IsVerified: true,
		CreatedAt:  time.Now().UTC(),
	}
	setProviderID(&user, provider, subject)
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// RequestPasswordReset envía un link de reset válido por una hora.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.resetTokens.IssueResetToken(user)
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendPasswordReset(ctx, emailAddr, resetLink); err != nil {
		if s.logger != nil {
			s.logger.Warn("send password reset failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// ResetPassword valida el token del link y reescribe el hash de contraseña.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrInvalidCredentials
	}

	userID, err := s.resetTokens.ParseResetToken(token)
	if err != nil {
		return ErrResetTokenInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hashBytes))
}

// GetByID devuelve el registro completo de un usuario.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) dispatchOTP(ctx context.Context, emailAddr, code string, expiresAt time.Time) error {
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendOTP(ctx, emailAddr, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

func setProviderID(user *domain.User, provider, subject string) {
	switch provider {
	case "google":
		user.GoogleID = subject
	case "github":
		user.GithubID = subject
	case "linkedin":
		user.LinkedinID = subject
	}
}

func generateOTP() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(otpTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
