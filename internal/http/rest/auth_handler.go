package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
	"golang.org/x/oauth2"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

func (api *API) AuthRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/register", Handler(api.Register))
	mux.Method(http.MethodPost, "/login", Handler(api.Login))
	mux.Method(http.MethodPost, "/verify", Handler(api.VerifyCode))
	mux.Method(http.MethodPost, "/resend", Handler(api.ResendCode))
	mux.Method(http.MethodPost, "/refresh", Handler(api.RefreshToken))
	mux.Method(http.MethodPost, "/google/create", Handler(api.CreateAccountWithGoogle))
	mux.Method(http.MethodPost, "/google/login", Handler(api.LoginWithGoogle))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Use(api.RequireRole(model.RoleAdmin))
		r.Method(http.MethodPost, "/admin/users", Handler(api.AdminCreateUser))
	})

	return mux
}

// googleUserInfo fetches the Google profile behind a client-side access
// token.
func (api *API) googleUserInfo(ctx context.Context, accessToken string) (*oauth2v2.Userinfo, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := oauth2v2.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}
	return svc.Userinfo.Get().Context(ctx).Do()
}

func (api *API) CreateAccountWithGoogle(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.GoogleAuthRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	userInfo, err := api.googleUserInfo(r.Context(), req.AccessToken)
	if err != nil {
		return respondWithError(err, "failed to get user info", values.Error, &tc)
	}

	// Check if user already exists
	_, err = api.GetUserByEmail(r.Context(), userInfo.Email)
	if err == nil {
		return respondWithError(nil, "user already exists", values.Conflict, &tc)
	}

	user := model.User{
		ID:           util.GenerateUUID(),
		Email:        userInfo.Email,
		FirstName:    &userInfo.GivenName,
		LastName:     &userInfo.FamilyName,
		Role:         model.RoleProductor,
		AuthProvider: "google",
		IsVerified:   userInfo.VerifiedEmail != nil && *userInfo.VerifiedEmail,
	}
	err = api.CreateNewUserRepo(r.Context(), user)
	if err != nil {
		return respondWithError(err, "failed to create new user", values.Error, &tc)
	}

	tokenString, _, err := api.createToken(user.ID.String())
	if err != nil {
		return respondWithError(err, "failed to create token", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Account created successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data: map[string]interface{}{
			"token": tokenString,
			"user":  user,
		},
	}
}

func (api *API) LoginWithGoogle(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.GoogleAuthRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	userInfo, err := api.googleUserInfo(r.Context(), req.AccessToken)
	if err != nil {
		return respondWithError(err, "failed to get user info", values.Error, &tc)
	}

	user, err := api.GetUserByEmail(r.Context(), userInfo.Email)
	if err != nil {
		return respondWithError(err, "user does not exist", values.NotFound, &tc)
	}

	tokenString, _, err := api.createToken(user.ID.String())
	if err != nil {
		return respondWithError(err, "failed to create token", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Login successful",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data: map[string]interface{}{
			"token": tokenString,
			"user":  user,
		},
	}
}

func (api *API) Register(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.RegisterRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	user, status, message, err := api.CreateNewUser(req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       user,
	}
}

func (api *API) Login(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.LoginRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	user, status, message, err := api.LoginUser(req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       user,
	}
}

func (api *API) VerifyCode(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.VerifyCodeRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	user, status, message, err := api.VerifyCodeHelper(req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       user,
	}
}

func (api *API) ResendCode(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.ResendCodeRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	status, message, err := api.ResendVerificationCode(req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func (api *API) RefreshToken(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.RefreshTokenRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	tokens, status, message, err := api.RefreshTokenHelper(r.Context(), req.RefreshToken)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       tokens,
	}
}

func (api *API) AdminCreateUser(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.AdminCreateUserRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	user, status, message, err := api.AdminCreateUserHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       user,
	}
}
