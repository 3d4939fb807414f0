package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"rosterkeeper/internal/client/models"
)

// userPayload is the wire shape of a user record. GroupID carries the
// backend group id so membership survives the round trip unmapped.
type userPayload struct {
	RemoteID       string    `json:"user_id,omitempty"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	GroupID        string    `json:"user_group_id,omitempty"`
	LastModifiedAt time.Time `json:"last_modified_at,omitzero"`
}

func (p userPayload) toModel() models.User {
	return models.User{
		RemoteID:       p.RemoteID,
		Username:       p.Username,
		Name:           p.Name,
		GroupID:        p.GroupID,
		LastModifiedAt: p.LastModifiedAt,
	}
}

// UserGateway exposes the backend user collection to the sync engine.
type UserGateway struct {
	c *Client
}

// NewUserGateway returns a gateway bound to the shared Client.
func NewUserGateway(c *Client) *UserGateway {
	return &UserGateway{c: c}
}

// Create posts a new user and returns the record carrying the backend id.
func (g *UserGateway) Create(ctx context.Context, rec models.User) (models.User, error) {
	in := userPayload{Username: rec.Username, Name: rec.Name, GroupID: rec.GroupID,
		LastModifiedAt: rec.LastModifiedAt}
	var out userPayload
	if err := g.c.do(ctx, http.MethodPost, "/api/users/", in, &out); err != nil {
		return models.User{}, err
	}
	rec = rec.WithRemoteID(out.RemoteID)
	if !out.LastModifiedAt.IsZero() {
		rec.LastModifiedAt = out.LastModifiedAt
	}
	return rec, nil
}

// Update overwrites the backend record addressed by the remote id.
func (g *UserGateway) Update(ctx context.Context, rec models.User) (models.User, error) {
	in := userPayload{Username: rec.Username, Name: rec.Name, GroupID: rec.GroupID,
		LastModifiedAt: rec.LastModifiedAt}
	var out userPayload
	err := g.c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(rec.RemoteID), in, &out)
	if err != nil {
		return models.User{}, err
	}
	if !out.LastModifiedAt.IsZero() {
		rec.LastModifiedAt = out.LastModifiedAt
	}
	return rec, nil
}

// Delete removes the backend record addressed by the remote id.
func (g *UserGateway) Delete(ctx context.Context, remoteID string) error {
	return g.c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(remoteID), nil, nil)
}

// FetchAll lists every backend user.
func (g *UserGateway) FetchAll(ctx context.Context) ([]models.User, error) {
	var payload []userPayload
	if err := g.c.do(ctx, http.MethodGet, "/api/users/", nil, &payload); err != nil {
		return nil, err
	}
	result := make([]models.User, 0, len(payload))
	for _, p := range payload {
		result = append(result, p.toModel())
	}
	return result, nil
}
