package rest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/values"
	"golang.org/x/crypto/bcrypt"
)

type TokenClaims struct {
	UserID string `json:"sub"`
	Type   string `json:"typ"`
	Exp    int64  `json:"exp"`
}

func (api *API) createToken(id string) (string, time.Time, error) {
	exp_time, err := time.ParseDuration(api.Config.JwtExpires)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(exp_time)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": id, // subject (user ID)
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
		"typ": "access",
	})

	tokenString, err := token.SignedString([]byte(api.Config.JwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (api *API) createRefreshToken(id string) (string, time.Time, error) {
	exp_time, err := time.ParseDuration(api.Config.RefreshExpiry)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(exp_time)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": id,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
		"typ": "refresh",
	})

	tokenString, err := token.SignedString([]byte(api.Config.RefreshSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (api *API) CreateNewUser(req model.RegisterRequest) (model.VerifyCodeResponse, string, string, error) {
	var err error
	var ctx = context.TODO()

	req.Email = strings.Trim(req.Email, " ")

	if err = util.ValidateStruct(req); err != nil {
		return model.VerifyCodeResponse{}, values.BadRequestBody, "Invalid registration payload", err
	}

	exists, err := api.EmailExists(ctx, req.Email)
	if err != nil {
		return model.VerifyCodeResponse{}, values.Error, "Error checking email", err
	}

	if exists {
		return model.VerifyCodeResponse{}, values.Conflict, "Email already exists", nil
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return model.VerifyCodeResponse{}, values.Error, "Error hashing password", err
	}

	user := model.User{
		ID:           util.GenerateUUID(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: &passwordHash,
		Role:         model.RoleProductor,
		AuthProvider: "email",
	}

	err = api.CreateNewUserRepo(ctx, user)
	if err != nil {
		return model.VerifyCodeResponse{}, values.Error, "Error creating new user", err
	}

	// Generate verification code
	code := util.GenerateVerificationCode()
	expiresAt := time.Now().Add(1 * time.Hour) // Code expires in 1 hour
	tokenType := "register"
	err = api.StoreVerificationCode(ctx, user.ID.String(), user.Email, code, tokenType, expiresAt)
	if err != nil {
		return model.VerifyCodeResponse{}, values.Error, "Failed to store verification code", err
	}

	go func() {
		emailData := map[string]interface{}{
			"Code": code,
		}

		if sendErr := api.Mailer.Send(user.Email, emailData, "verifyEmail.tmpl"); sendErr != nil {
			log.Println(values.Error, "Failed to send verification email", sendErr)
		}
	}()

	response := model.VerifyCodeResponse{
		ID:    user.ID.String(),
		Email: user.Email,
	}

	return response, values.Created, "User created successfully", nil
}

func (api *API) LoginUser(req model.LoginRequest) (model.LoginResponse, string, string, error) {
	var err error
	var ctx = context.TODO()

	req.Email = strings.Trim(req.Email, " ")

	err = util.ValidEmail(req.Email)
	if err != nil {
		return model.LoginResponse{}, values.NotAllowed, "Invalid email address provided", err
	}

	user, err := api.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return model.LoginResponse{}, values.NotFound, "User not found", err
	}

	if user.PasswordHash == nil {
		return model.LoginResponse{}, values.NotAllowed, "Account uses a different sign-in method", fmt.Errorf("no password set")
	}
	if err = checkPassword(*user.PasswordHash, req.Password); err != nil {
		return model.LoginResponse{}, values.NotAuthorised, "Invalid credentials", err
	}

	if !user.IsVerified {
		return model.LoginResponse{}, values.NotAllowed, "Email not verified", fmt.Errorf("email not verified")
	}

	return api.issueTokens(ctx, user, "Login successful")
}

func (api *API) issueTokens(ctx context.Context, user model.User, message string) (model.LoginResponse, string, string, error) {
	token, _, err := api.createToken(user.ID.String())
	if err != nil {
		return model.LoginResponse{}, values.Error, "Failed to create token", err
	}

	refreshToken, refreshExpiresAt, err := api.createRefreshToken(user.ID.String())
	if err != nil {
		return model.LoginResponse{}, values.Error, "Failed to create refresh token", err
	}

	if err = api.StoreRefreshToken(ctx, user.ID.String(), refreshToken, refreshExpiresAt); err != nil {
		return model.LoginResponse{}, values.Error, "Failed to store refresh token", err
	}

	response := model.LoginResponse{
		User: &model.LoginUserResponse{
			ID:                user.ID,
			FirstName:         user.FirstName,
			LastName:          user.LastName,
			Email:             user.Email,
			Role:              user.Role,
			IsVerified:        user.IsVerified,
			PreferredLanguage: user.PreferredLanguage,
		},
		Token:        token,
		RefreshToken: refreshToken,
	}
	return response, values.Success, message, nil
}

func (api *API) VerifyCodeHelper(req model.VerifyCodeRequest) (model.LoginResponse, string, string, error) {
	var err error
	var ctx = context.TODO()

	if err := util.ValidEmail(req.Email); err != nil {
		return model.LoginResponse{}, values.BadRequestBody, "Invalid email format", err
	}

	if len(req.Code) != 4 {
		return model.LoginResponse{}, values.BadRequestBody, "Invalid verification code format", fmt.Errorf("code must be 4 digits")
	}

	userID, err := api.VerifyCodeRepo(ctx, req.Code, req.Type, req.Email)
	if err != nil {
		log.Println("Error verifying code", err)
		return model.LoginResponse{}, values.NotAuthorised, "Invalid or expired verification code", err
	}

	if req.Type == "register" {
		err = api.UpdateEmailVerifiedStatus(ctx, userID)
		if err != nil {
			return model.LoginResponse{}, values.Error, "Failed to update email verification status", err
		}
	}

	user, err := api.GetUserByID(ctx, userID)
	if err != nil {
		return model.LoginResponse{}, values.Error, "Failed to retrieve user", err
	}

	return api.issueTokens(ctx, user, "Verification successful")
}

func (api *API) ResendVerificationCode(req model.ResendCodeRequest) (string, string, error) {
	var err error
	var ctx = context.TODO()

	req.Email = strings.Trim(req.Email, " ")

	err = util.ValidEmail(req.Email)
	if err != nil {
		return values.NotAllowed, "Invalid email address provided", err
	}

	user, err := api.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return values.NotFound, "User not found", err
	}

	code := util.GenerateVerificationCode()
	expiresAt := time.Now().Add(1 * time.Hour)
	tokenType := "register"
	err = api.StoreVerificationCode(ctx, user.ID.String(), user.Email, code, tokenType, expiresAt)
	if err != nil {
		return values.Error, "Failed to store verification code", err
	}
	go func() {
		emailData := map[string]interface{}{
			"Name": user.FirstName,
			"Code": code,
		}
		if sendErr := api.Mailer.Send(user.Email, emailData, "verifyEmail.tmpl"); sendErr != nil {
			log.Println(values.Error, "Failed to send verification email", sendErr)
		}
	}()

	return values.Success, "Verification code sent", nil
}

// RefreshTokenHelper rotates the refresh token: the old one is revoked
// and a fresh pair is issued.
func (api *API) RefreshTokenHelper(ctx context.Context, refreshToken string) (model.RefreshTokenResponse, string, string, error) {
	claims, err := api.verifyToken(refreshToken, true)
	if err != nil {
		return model.RefreshTokenResponse{}, values.NotAuthorised, "Invalid refresh token", err
	}

	if err = api.ValidateRefreshToken(ctx, refreshToken); err != nil {
		return model.RefreshTokenResponse{}, values.NotAuthorised, "Refresh token revoked or expired", err
	}

	if err = api.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return model.RefreshTokenResponse{}, values.Error, "Failed to revoke refresh token", err
	}

	token, _, err := api.createToken(claims.UserID)
	if err != nil {
		return model.RefreshTokenResponse{}, values.Error, "Failed to create token", err
	}

	newRefresh, refreshExpiresAt, err := api.createRefreshToken(claims.UserID)
	if err != nil {
		return model.RefreshTokenResponse{}, values.Error, "Failed to create refresh token", err
	}

	if err = api.StoreRefreshToken(ctx, claims.UserID, newRefresh, refreshExpiresAt); err != nil {
		return model.RefreshTokenResponse{}, values.Error, "Failed to store refresh token", err
	}

	return model.RefreshTokenResponse{
		Token:        token,
		RefreshToken: newRefresh,
	}, values.Success, "Token refreshed", nil
}

// AdminCreateUserHelper provisions a user with an explicit role. The
// account comes out verified; no code email is sent.
func (api *API) AdminCreateUserHelper(ctx context.Context, req model.AdminCreateUserRequest) (model.User, string, string, error) {
	if err := util.ValidateStruct(req); err != nil {
		return model.User{}, values.BadRequestBody, "Invalid user payload", err
	}

	req.Email = strings.Trim(req.Email, " ")

	exists, err := api.EmailExists(ctx, req.Email)
	if err != nil {
		return model.User{}, values.Error, "Error checking email", err
	}
	if exists {
		return model.User{}, values.Conflict, "Email already exists", nil
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return model.User{}, values.Error, "Error hashing password", err
	}

	user := model.User{
		ID:           util.GenerateUUID(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: &passwordHash,
		Role:         req.Role,
		AuthProvider: "email",
		IsVerified:   true,
	}

	if err = api.CreateNewUserRepo(ctx, user); err != nil {
		return model.User{}, values.Error, "Error creating new user", err
	}

	user.PasswordHash = nil
	return user, values.Created, "User created successfully", nil
}
