package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
)

const (
	exportAudience   = "export"
	exportContextKey = "exportToken"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Scope string `json:"scope,omitempty"`
}

// exportGate guards the export endpoints behind the shared password.
type exportGate struct {
	core.SharedPassword
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newExportGate(conf *core.Config) (*exportGate, error) {
	pwd, err := core.NewSharedPassword(conf.ExportPassword)
	if err != nil {
		return nil, errors.Wrap(err, "setting up export gate")
	}
	return &exportGate{
		SharedPassword: pwd,
		conf:           conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    exportContextKey,
			Claims:        new(Claims),
		},
	}, nil
}

func (g *exportGate) newClaims() *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    g.conf.AppName,
			Audience:  exportAudience,
			ExpiresAt: now.Add(g.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Scope: exportAudience,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (g *exportGate) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(g.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(g.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(exportContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
