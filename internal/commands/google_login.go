package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"kanban/internal/clientconfig"
	"kanban/internal/exitcode"
)

const (
	oauthCallbackTimeout = 5 * time.Minute
	tokenExchangeTimeout = 30 * time.Second
	oauthStartPort       = 8085
	oauthMaxPortAttempts = 5
)

var googleScopes = []string{"openid", "email", "profile"}

func init() {
	Register(&GoogleLoginCmd{})
}

// GoogleLoginCmd runs the OAuth loopback flow with PKCE, then hands the
// resulting ID token to the server.
type GoogleLoginCmd struct{}

func (c *GoogleLoginCmd) Name() string      { return "google-login" }
func (c *GoogleLoginCmd) Aliases() []string { return nil }
func (c *GoogleLoginCmd) Synopsis() string  { return "Log in with a Google account" }
func (c *GoogleLoginCmd) Usage() string     { return "kanban google-login" }
func (c *GoogleLoginCmd) NeedsAuth() bool   { return false }

func (c *GoogleLoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *GoogleLoginCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", clientconfig.OAuthClientFile, cfg.Dir)
		fmt.Fprintln(errOut, "Create a 'Desktop app' OAuth client in the Google Cloud console for the")
		fmt.Fprintln(errOut, "same project as the server's GOOGLE_CLIENT_ID, download the JSON and save it as:")
		fmt.Fprintf(errOut, "   %s\n", cfg.OAuthClientPath())
		return exitcode.AuthError
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read %s: %v\n", clientconfig.OAuthClientFile, err)
		return exitcode.AuthError
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, googleScopes...)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid %s: %v\n", clientconfig.OAuthClientFile, err)
		return exitcode.AuthError
	}

	idToken, err := googleIDToken(ctx, oauthConfig, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	res, err := api.GoogleLogin(ctx, idToken)
	if err != nil {
		return report(errOut, err)
	}
	return saveSession(cfg, res.Token, res.Username, out, errOut)
}

// googleIDToken prints the consent URL, waits for the loopback callback and
// returns the id_token from the code exchange.
func googleIDToken(ctx context.Context, oauthConfig *oauth2.Config, errOut io.Writer) (string, error) {
	port, listener, err := findAvailablePort()
	if err != nil {
		return "", errors.New("could not bind to local port for OAuth callback")
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, codeCh, errCh))

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			trySend(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return "", err
	case <-time.After(oauthCallbackTimeout):
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange code for token: %w", err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", errors.New("google did not return an id_token")
	}
	return idToken, nil
}

// callbackHandler reports the first callback on codeCh or errCh. Later
// requests get a response but are otherwise dropped.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			trySend(errCh, errors.New("oauth state mismatch"))
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			trySend(errCh, errors.New("no code in callback"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		trySend(codeCh, code)
	}
}

func trySend[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// findAvailablePort tries oauthStartPort and the next few ports.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, errors.New("no available port found")
}
