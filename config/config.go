// fixit/config/config.go
package config

import "time"

const (
	AppVersion = "0.4.0"

	// Form Limits
	MaxTitleLen     = 200
	MinPasswordLen  = 8
	MaxJSONBodySize = 64 * 1024

	// File Upload Limits
	MaxFileSize = 15 * 1024 * 1024 // 15MB
	MaxWidth    = 8000
	MaxHeight   = 8000

	DefaultImageName = "image.jpg"
	DefaultImageType = "image/jpeg"
	DefaultImageExt  = "jpg"

	// Session & Password Reset
	SessionCookieName = "auth_session"
	SessionMaxAge     = 7 * 24 * time.Hour
	ResetTokenBytes   = 32
	ResetTokenTTL     = time.Hour
	BcryptCost        = 10

	// Bot Detection
	RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	RecaptchaMinScore  = 0.5
	RecaptchaTimeout   = 10 * time.Second

	// Rate Limiting Defaults
	DefaultRateLimitEvery  = "30s"
	DefaultRateLimitBurst  = 3
	DefaultRateLimitPrune  = "1h"
	DefaultRateLimitExpire = "24h"
	DefaultAuthPerMinute   = 10
)
