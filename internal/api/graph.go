package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinicload/internal/model"
)

const (
	DefaultLoginURL = "https://login.microsoftonline.com"
	DefaultGraphURL = "https://graph.microsoft.com/v1.0"
	graphScope      = "https://graph.microsoft.com/.default"
)

// GraphConfig holds the app registration used for client-credentials auth.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	LoginURL     string
	GraphURL     string
}

// Graph lists directory group members through Microsoft Graph.
type Graph struct {
	cfg   GraphConfig
	login *Client
	api   *Client
	log   zerolog.Logger
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type membersPage struct {
	Value    []model.DirectoryUser `json:"value"`
	NextLink string                `json:"@odata.nextLink"`
}

// NewGraph creates an unauthenticated Graph client.
func NewGraph(cfg GraphConfig, log zerolog.Logger) *Graph {
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	log = log.With().Str("api", "graph").Logger()
	return &Graph{
		cfg:   cfg,
		login: NewClient(cfg.LoginURL, log),
		api:   NewClient(cfg.GraphURL, log),
		log:   log,
	}
}

// Authenticate requests an access token with the client-credentials grant.
func (g *Graph) Authenticate(ctx context.Context) error {
	var tok tokenResponse
	endpoint := fmt.Sprintf("/%s/oauth2/v2.0/token", url.PathEscape(g.cfg.TenantID))
	err := g.login.PostForm(ctx, endpoint, map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     g.cfg.ClientID,
		"client_secret": g.cfg.ClientSecret,
		"scope":         graphScope,
	}, &tok)
	if err != nil {
		return fmt.Errorf("request access token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("request access token: empty token in response")
	}
	g.api.SetHeader("Authorization", "Bearer "+tok.AccessToken)
	return nil
}

// GroupMembers returns every member of the group, following @odata.nextLink.
func (g *Graph) GroupMembers(ctx context.Context, groupID string) ([]model.DirectoryUser, error) {
	var members []model.DirectoryUser
	endpoint := fmt.Sprintf("/groups/%s/members", url.PathEscape(groupID))
	for pages := 0; endpoint != ""; pages++ {
		var page membersPage
		if err := g.api.Get(ctx, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("list group members (page %d): %w", pages+1, err)
		}
		members = append(members, page.Value...)
		endpoint = page.NextLink
	}
	g.log.Info().Str("group", groupID).Int("members", len(members)).Msg("directory members fetched")
	return members, nil
}
