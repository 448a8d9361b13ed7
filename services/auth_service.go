// Package services, iş mantığı katmanını barındırır.
//
// Service'ler repository interface'leri üzerinden çalışır, HTTP'den habersizdir.
// Yetki kontrolleri (rol, flag, ownership) bu katmandadır — handler sadece
// parse edip service'i çağırır. Hata olarak pkg sentinel'leri döner.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
)

// AuthService, kimlik doğrulama ve hesap yaşam döngüsü iş mantığı.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error)
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	// DeleteAccount, hesabı anonimleştirir — satır silinmez, mesaj
	// geçmişindeki referanslar bozulmaz.
	DeleteAccount(ctx context.Context, userID string) error
	// EnsureUser, username için kayıt yoksa sentinel hash'li placeholder
	// hesap oluşturur. Davet referansı gibi akışlar kullanır.
	EnsureUser(ctx context.Context, username string) (*models.User, error)
}

// AuthResult, login/register sonrası dönen token + kullanıcı.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessExp time.Duration
}

// NewAuthService, constructor.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, accessExpMinutes int) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		accessExp: time.Duration(accessExpMinutes) * time.Minute,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		NotifySounds: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Kullanıcının varlığını sızdırma — yanlış şifreyle aynı hata.
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}

	// Sentinel hash'li hesaplara giriş yapılamaz.
	if !user.HasRealCredential() {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}

	return s.issueTokens(user)
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
	}
	if req.DisplayColor != nil {
		user.DisplayColor = req.DisplayColor
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.AudioInputMode != nil {
		user.AudioInputMode = models.AudioInputMode(*req.AudioInputMode)
	}
	if req.NotifySounds != nil {
		user.NotifySounds = *req.NotifySounds
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	return s.userRepo.Anonymize(ctx, userID)
}

func (s *authService) EnsureUser(ctx context.Context, username string) (*models.User, error) {
	username = models.NormalizeUsername(username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}

	user = &models.User{
		Username:     username,
		PasswordHash: models.PasswordSentinel,
		NotifySounds: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, pkg.ErrConflict) {
			// Yarışan ensure aynı hesabı önce yazdı — mevcut kaydı dön.
			return s.userRepo.GetByUsername(ctx, username)
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issueTokens(user *models.User) (*AuthResult, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	// Hash response'a asla sızmaz.
	user.PasswordHash = ""

	return &AuthResult{
		AccessToken: signed,
		User:        *user,
	}, nil
}
