package echoapi

import "github.com/labstack/echo/v4"

// exportScopeMiddleware rejects tokens that were not issued for exports.
func exportScopeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		if claims.Scope != exportAudience || !claims.VerifyAudience(exportAudience, true) {
			return errForbidden
		}
		return next(ctx)
	}
}
