package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dkeye/RoomCounter/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const accessTokenKey = "access_token"

type tokenRequest struct {
	Code string `json:"code" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

var tokenClient = &http.Client{Timeout: 10 * time.Second}

// tokenHandler trades the host platform's authorization code for an access
// token. It is a pass-through; the core never sees the token.
func tokenHandler(cfg *config.Config) gin.HandlerFunc {
	oc := &oauth2.Config{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.Discord.RedirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.Discord.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code is required"})
			return
		}
		if !cfg.HasDiscordCredentials() {
			log.Error().Str("module", "adapters.http").Msg("missing discord credentials")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, tokenClient)
		tok, err := oc.Exchange(ctx, req.Code)
		if err != nil {
			status, detail := upstreamError(err)
			log.Error().Err(err).Str("module", "adapters.http").Int("status", status).Msg("error exchanging token")
			c.JSON(status, gin.H{"error": "Failed to exchange token", "detail": detail})
			return
		}

		session := sessions.Default(c)
		session.Set(accessTokenKey, tok.AccessToken)
		if err := session.Save(); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
		}
		c.JSON(http.StatusOK, tokenResponse{AccessToken: tok.AccessToken})
	}
}

func upstreamError(err error) (int, string) {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := http.StatusInternalServerError
		if re.Response != nil && re.Response.StatusCode >= 400 {
			status = re.Response.StatusCode
		}
		if re.ErrorCode != "" {
			return status, re.ErrorCode
		}
		return status, string(re.Body)
	}
	return http.StatusInternalServerError, err.Error()
}
