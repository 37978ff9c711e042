// fixit/models/services.go
package models

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// --- Stateful Services ---

type RateLimiter struct {
	Mu       sync.RWMutex
	Limiters map[string]*rate.Limiter
	LastSeen map[string]time.Time

	every  time.Duration
	burst  int
	expire time.Duration
}

// --- Rate Limiter Methods ---

// NewRateLimiter creates and starts a new rate limiter. Each key gets a bucket
// refilled once per `every` holding up to `burst` tokens; keys idle longer
// than `expire` are dropped every `prune`.
func NewRateLimiter(every time.Duration, burst int, prune, expire time.Duration) *RateLimiter {
	rl := &RateLimiter{
		Limiters: make(map[string]*rate.Limiter),
		LastSeen: make(map[string]time.Time),
		every:    every,
		burst:    burst,
		expire:   expire,
	}
	if prune > 0 {
		go rl.cleanup(prune)
	}
	return rl
}

// GetLimiter retrieves or creates a rate limiter for a given IP address.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.Mu.Lock()
	defer rl.Mu.Unlock()
	limiter, exists := rl.Limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(rl.every), rl.burst)
		rl.Limiters[ip] = limiter
	}
	rl.LastSeen[ip] = time.Now()
	return limiter
}

// Allow consumes one token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.GetLimiter(ip).Allow()
}

// cleanup periodically removes old entries from the rate limiter maps.
func (rl *RateLimiter) cleanup(prune time.Duration) {
	for range time.Tick(prune) {
		rl.prune(time.Now().Add(-rl.expire))
	}
}

func (rl *RateLimiter) prune(cutoff time.Time) {
	rl.Mu.Lock()
	defer rl.Mu.Unlock()
	for ip, lastSeen := range rl.LastSeen {
		if lastSeen.Before(cutoff) {
			delete(rl.Limiters, ip)
			delete(rl.LastSeen, ip)
		}
	}
}

// --- Interfaces ---

// StorageService persists uploaded files and returns their public URL.
type StorageService interface {
	SaveFile(ctx context.Context, filename string, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, path string) error
}

// Verifier decides whether a bot-detection token belongs to a human.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// --- Bot Detection ---

// RecaptchaVerifier checks reCAPTCHA v3 tokens against the siteverify API.
type RecaptchaVerifier struct {
	SecretKey string
	VerifyURL string
	MinScore  float64
	Client    *http.Client
	Logger    *slog.Logger
}

type recaptchaResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// NewRecaptchaVerifier builds a verifier with a bounded HTTP client.
func NewRecaptchaVerifier(secretKey, verifyURL string, minScore float64, timeout time.Duration, logger *slog.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		SecretKey: secretKey,
		VerifyURL: verifyURL,
		MinScore:  minScore,
		Client:    &http.Client{Timeout: timeout},
		Logger:    logger,
	}
}

// Verify reports whether token belongs to a human. Every failure path,
// including transport errors and undecodable bodies, returns false.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) bool {
	ok, err := v.verify(ctx, token)
	if err != nil {
		v.Logger.Warn("Bot detection check failed", "error", err)
		return false
	}
	return ok
}

func (v *RecaptchaVerifier) verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.SecretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("verify endpoint returned status %d", resp.StatusCode)
	}

	var body recaptchaResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}
	if !body.Success {
		v.Logger.Info("Bot detection rejected token", "error_codes", body.ErrorCodes)
		return false, nil
	}
	if body.Score == nil {
		return false, fmt.Errorf("verify response has no score")
	}
	return *body.Score >= v.MinScore, nil
}
