package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"commerce-platform/internal/config"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// GoogleUserInfo is the subset of the OpenID userinfo response we consume.
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// GoogleAuthenticator wraps the OAuth2 code flow against Google.
// UserinfoURL is injectable so tests can point it at a stub server.
type GoogleAuthenticator struct {
	conf        *oauth2.Config
	userinfoURL string
}

func NewGoogleAuthenticator(cfg config.GoogleConfig) *GoogleAuthenticator {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	return &GoogleAuthenticator{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
				"openid",
			},
			Endpoint: googleEndpoint,
		},
		userinfoURL: defaultUserinfoURL,
	}
}

// AuthURL builds the consent URL. An empty state gets a random one.
func (g *GoogleAuthenticator) AuthURL(state string) string {
	if state == "" {
		state = uuid.NewString()
	}
	return g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the authorization code for tokens and fetches the
// userinfo document.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, code string) (GoogleUserInfo, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return GoogleUserInfo{}, fmt.Errorf("google code exchange: %w", err)
	}

	client := g.conf.Client(ctx, tok)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return GoogleUserInfo{}, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GoogleUserInfo{}, fmt.Errorf("google userinfo: unexpected status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleUserInfo{}, fmt.Errorf("google userinfo decode: %w", err)
	}
	if info.Email == "" {
		return GoogleUserInfo{}, fmt.Errorf("google userinfo: email missing")
	}
	return info, nil
}

func newID() string { return uuid.NewString() }
