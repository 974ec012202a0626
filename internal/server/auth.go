package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string     `json:"userId"`
	Email  string     `json:"email,omitempty"`
	Role   types.Role `json:"role"`
}

type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

// CognitoAPI is the subset of the Cognito client used for account flows.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// JWKSVerifier checks Cognito access tokens against the user pool's JWKS.
type JWKSVerifier struct {
	cache    *jwk.Cache
	jwksURL  string
	clientID string
}

func NewJWKSVerifier(cache *jwk.Cache, jwksURL, clientID string) *JWKSVerifier {
	return &JWKSVerifier{cache: cache, jwksURL: jwksURL, clientID: clientID}
}

func (v *JWKSVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	set, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, errors.New("no user ID in JWT subject claim")
	}

	// Cognito access tokens carry client_id instead of aud
	if v.clientID != "" {
		var clientID string
		if err := token.Get("client_id", &clientID); err != nil || clientID != v.clientID {
			return nil, errors.New("token was not issued to this client")
		}
	}

	identity := &Identity{UserID: userID}
	_ = token.Get("email", &identity.Email)

	var groups []any
	_ = token.Get("cognito:groups", &groups)
	identity.Role = roleFromGroups(groups)

	return identity, nil
}

var rolePrecedence = []types.Role{
	types.RoleAdmin,
	types.RoleDragonsDenJudge,
	types.RoleJuryMember,
	types.RoleTechnicalReviewer,
}

// roleFromGroups picks the most privileged Cognito group. Users in no
// recognised group are applicants.
func roleFromGroups(groups []any) types.Role {
	member := make(map[types.Role]bool, len(groups))
	for _, g := range groups {
		if name, ok := g.(string); ok {
			member[types.Role(name)] = true
		}
	}

	for _, role := range rolePrecedence {
		if member[role] {
			return role
		}
	}
	return types.RoleApplicant
}

type registerRequest struct {
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.failErr(w, r, err, "invalid register payload")
		return
	}

	req.GivenName = strings.TrimSpace(req.GivenName)
	req.FamilyName = strings.TrimSpace(req.FamilyName)
	req.Email = strings.TrimSpace(req.Email)

	if fieldErrors := validateRegisterInput(req); len(fieldErrors) > 0 {
		s.write(w, http.StatusUnprocessableEntity, envelope{Error: "Please fix the highlighted fields.", Details: fieldErrors})
		return
	}

	out, err := s.cognito.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(req.Email), // use email as username
		Password: aws.String(req.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(req.Email)},
			{Name: aws.String("given_name"), Value: aws.String(req.GivenName)},
			{Name: aws.String("family_name"), Value: aws.String(req.FamilyName)},
		},
	})
	if err != nil {
		msg, fieldErrors, known := s.mapCognitoSignUpError(err)
		if !known {
			s.failErr(w, r, err, "failed to signup user")
			return
		}
		s.write(w, http.StatusUnprocessableEntity, envelope{Error: msg, Details: fieldErrors})
		return
	}

	userSub := aws.ToString(out.UserSub)
	if s.store != nil {
		applicant := &types.Applicant{
			ID:        utils.NanoID(),
			UserID:    userSub,
			FirstName: req.GivenName,
			LastName:  req.FamilyName,
			Email:     req.Email,
		}
		if err := s.store.Applicants.Create(ctx, applicant); err != nil {
			s.failErr(w, r, err, "failed to create applicant for new user")
			return
		}
	}

	s.ok(w, http.StatusCreated, map[string]any{
		"userId":    userSub,
		"confirmed": out.UserConfirmed,
	})
}

type confirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"notblank"`
}

func (s *Service) handlePostConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		s.failErr(w, r, err, "invalid confirm payload")
		return
	}

	_, err := s.cognito.ConfirmSignUp(r.Context(), &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(strings.TrimSpace(req.Email)),
		ConfirmationCode: aws.String(strings.TrimSpace(req.Code)),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")

		var codeMismatch *ctypes.CodeMismatchException
		var expired *ctypes.ExpiredCodeException
		switch {
		case errors.As(err, &codeMismatch):
			s.fail(w, http.StatusUnprocessableEntity, "Invalid confirmation code. Please check the code and try again.")
		case errors.As(err, &expired):
			s.fail(w, http.StatusUnprocessableEntity, "Confirmation code has expired. Request a new one.")
		default:
			s.fail(w, http.StatusBadGateway, "Unable to confirm account. Please try again.")
		}
		return
	}

	s.ok(w, http.StatusOK, map[string]bool{"confirmed": true})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.failErr(w, r, err, "invalid login payload")
		return
	}

	resp, err := s.cognito.InitiateAuth(r.Context(), &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": strings.TrimSpace(req.Email),
			"PASSWORD": req.Password,
		},
	})
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.logger.WithError(err).Debug("login rejected")
		s.fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.fail(w, http.StatusUnauthorized, "Login failed")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	encryptedToken, err := s.cookie.Encode(cookieAccessTokenName, accessToken)
	if err != nil {
		s.failErr(w, r, err, "failed to encrypt access token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieAccessTokenName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	s.ok(w, http.StatusOK, map[string]any{
		"accessToken": accessToken,
		"expiresIn":   expiresIn,
	})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	if accessToken, ok := s.accessToken(r); ok && s.cognito != nil {
		_, err := s.cognito.GlobalSignOut(r.Context(), &cognitoidentityprovider.GlobalSignOutInput{
			AccessToken: aws.String(accessToken),
		})
		if err != nil {
			s.logger.WithError(err).Warn("failed to revoke tokens on logout")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieAccessTokenName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.ok(w, http.StatusOK, nil)
}

func (s *Service) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := s.identity(r)

	data := map[string]any{"identity": identity}

	switch {
	case identity.Role == types.RoleApplicant:
		applicant, err := s.store.Applicants.ApplicantByUserID(ctx, identity.UserID)
		if err != nil && !errors.Is(err, types.ErrApplicantNotFound) {
			s.failErr(w, r, err, "failed to load applicant")
			return
		}
		data["applicant"] = applicant
	case identity.Role.IsEvaluator():
		evaluator, err := s.store.Evaluators.EvaluatorByUserID(ctx, identity.UserID)
		if err != nil && !errors.Is(err, types.ErrEvaluatorNotFound) {
			s.failErr(w, r, err, "failed to load evaluator")
			return
		}
		data["evaluator"] = evaluator
	}

	s.ok(w, http.StatusOK, data)
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateRegisterInput(req registerRequest) map[string]string {
	errs := map[string]string{}

	if req.GivenName == "" {
		errs["givenName"] = "First name is required."
	}

	if req.FamilyName == "" {
		errs["familyName"] = "Last name is required."
	}

	if req.Email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if req.Password != req.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match."
	}

	password := req.Password
	if len(password) < 12 || !hasUpperReg.MatchString(password) || !hasLowerReg.MatchString(password) ||
		!hasDigitReg.MatchString(password) || !hasSymbolReg.MatchString(password) {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) mapCognitoSignUpError(err error) (string, map[string]string, bool) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return "Please fix the highlighted fields.", fieldErrs, true
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return "Try logging in instead.", fieldErrs, true
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "Some details are invalid. Please review and try again.", fieldErrs, true
	}

	return "", nil, false
}
