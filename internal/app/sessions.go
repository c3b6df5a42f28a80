package app

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"dao-governance/internal/identity"
	"dao-governance/internal/model"
)

var (
	ErrUnknownChallenge = errors.New("no pending challenge for this address")
	ErrSignerMismatch   = errors.New("signature does not match the connecting address")
	ErrInvalidToken     = errors.New("invalid session token")
)

type AuthParams struct {
	TokenSecret  []byte
	TokenTTL     time.Duration
	ChallengeTTL time.Duration
}

type sessionIssuer struct {
	secret     []byte
	tokenTTL   time.Duration
	challenges *cache.Cache
}

func newSessionIssuer(params AuthParams) sessionIssuer {
	return sessionIssuer{
		secret:     params.TokenSecret,
		tokenTTL:   params.TokenTTL,
		challenges: cache.New(params.ChallengeTTL, 2*params.ChallengeTTL),
	}
}

// sessionClaims is the token payload: the standard claims plus the
// per-session context the front-end caches.
type sessionClaims struct {
	jwt.Claims
	Address  string `json:"addr"`
	IsOwner  bool   `json:"owner"`
	IsMember bool   `json:"member"`
}

// SessionChallenge issues a one-shot login challenge for the address. The
// wallet signs the returned message and presents the signature to Connect.
func (a *App) SessionChallenge(addressHex string) (string, error) {
	address, err := identity.ParseAddress(addressHex)
	if err != nil {
		return "", err
	}

	message := "Sign in to the DAO governance dashboard\n" +
		"Address: " + address.Hex() + "\n" +
		"Nonce: " + uuid.NewString()
	a.sessions.challenges.SetDefault(challengeKey(addressHex), message)

	a.logger.Debug("session challenge issued", zap.String("address", address.Hex()))
	return message, nil
}

// Connect verifies the signed challenge, resolves the caller's owner and
// member flags once, and issues a session token carrying them. The flags
// are a display cache; the engine re-checks authority on every mutation.
func (a *App) Connect(addressHex, signature string) (string, model.SessionContext, error) {
	address, err := identity.ParseAddress(addressHex)
	if err != nil {
		return "", model.SessionContext{}, err
	}

	key := challengeKey(addressHex)
	cached, ok := a.sessions.challenges.Get(key)
	if !ok {
		return "", model.SessionContext{}, ErrUnknownChallenge
	}
	message := cached.(string)

	signer, err := identity.RecoverAddress(message, signature)
	if err != nil {
		return "", model.SessionContext{}, err
	}
	if signer != address {
		return "", model.SessionContext{}, ErrSignerMismatch
	}

	// challenges are single-use
	a.sessions.challenges.Delete(key)

	sctx := a.engine.SessionContext(address)
	token, err := a.sessions.issue(sctx)
	if err != nil {
		return "", model.SessionContext{}, err
	}

	a.logger.Info("session opened",
		zap.String("address", address.Hex()),
		zap.Bool("isOwner", sctx.IsOwner),
		zap.Bool("isMember", sctx.IsMember))

	return token, sctx, nil
}

// VerifySession validates a session token and returns the caller context
// embedded in it.
func (a *App) VerifySession(token string) (model.SessionContext, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return model.SessionContext{}, ErrInvalidToken
	}

	var claims sessionClaims
	if err := parsed.Claims(a.sessions.secret, &claims); err != nil {
		return model.SessionContext{}, ErrInvalidToken
	}
	if err := claims.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		return model.SessionContext{}, ErrInvalidToken
	}

	address, err := identity.ParseAddress(claims.Address)
	if err != nil {
		return model.SessionContext{}, ErrInvalidToken
	}

	return model.SessionContext{
		Address:  address,
		IsOwner:  claims.IsOwner,
		IsMember: claims.IsMember,
	}, nil
}

func (s sessionIssuer) issue(sctx model.SessionContext) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: s.secret},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", errors.New("failed to build the token signer: " + err.Error())
	}

	now := time.Now()
	claims := sessionClaims{
		Claims: jwt.Claims{
			Subject:  sctx.Address.Hex(),
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Address:  sctx.Address.Hex(),
		IsOwner:  sctx.IsOwner,
		IsMember: sctx.IsMember,
	}

	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", errors.New("failed to sign the session token: " + err.Error())
	}
	return token, nil
}

func challengeKey(addressHex string) string {
	return strings.ToLower(addressHex)
}
