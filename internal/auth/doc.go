// Package auth provides authentication and authorization for the application.
//
// Users sign up and log in with their mobile phone number; successful calls
// return a signed JWT bearer token. Every protected route runs the
// Middleware, which verifies the token and loads the user into the gin
// context.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<random string>   # HMAC signing key
//	AUTH_TOKEN_TTL=720h               # token lifetime (30 days default)
//	AUTH_BCRYPT_COST=12               # bcrypt cost factor
//
// # Usage
//
// Initialize authentication in the entrypoint:
//
//	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
//	router.Use(auth.NewMiddleware(authService).Handler())
//
// Extract the user in handlers:
//
//	user := auth.GetUser(c)
package auth
