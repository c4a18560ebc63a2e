package cmd

import (
	"context"
	"event-ticket/common/auth"
	"event-ticket/common/constant"
	"log"
	"log/slog"
	"net/http"
	"time"
)

// runClientCmd periodically asks the HTTP server to expire unpaid orders, authenticating as admin.
func runClientCmd(ctx context.Context) {
	cfg := newCfg("env")

	interval := cfg.GetDuration("client.expire_interval")
	expireTicker := time.NewTicker(interval)
	defer expireTicker.Stop()

	expireUrl := cfg.GetString("client.expire_url")
	verifier := newVerifier(cfg)

	client := &http.Client{
		Timeout: 20 * time.Second,
	}

	// mint once so a bad secret fails at startup, not on every tick
	if _, err := verifier.Issue(expiryIdentity(), interval); err != nil {
		log.Fatalln("failed to issue expiry token", err)
	}

	slog.InfoContext(ctx, "client started", slog.String("expire_url", expireUrl))

	go func() {
		for {
			select {
			case <-expireTicker.C:
				go func() {
					reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					token, err := verifier.Issue(expiryIdentity(), time.Minute)
					if err != nil {
						slog.ErrorContext(ctx, "Failed to issue token", slog.Any(constant.LogFieldErr, err))
						return
					}

					req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, expireUrl, nil)
					if err != nil {
						slog.ErrorContext(ctx, "Failed to create request",
							slog.String("url", expireUrl),
							slog.Any(constant.LogFieldErr, err))
						return
					}
					req.Header.Set("Authorization", "Bearer "+token)

					resp, err := client.Do(req)
					if err != nil {
						slog.WarnContext(ctx, "expire request failed", slog.Any(constant.LogFieldErr, err))
						return
					}
					defer resp.Body.Close()

					if resp.StatusCode != http.StatusOK {
						slog.WarnContext(ctx, "expire request rejected", slog.Int("status", resp.StatusCode))
					}
				}()

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()

	slog.InfoContext(ctx, "client stopped")
}

func expiryIdentity() auth.Identity {
	return auth.Identity{RegistrantId: "expiry-client", Role: constant.RoleAdmin}
}
