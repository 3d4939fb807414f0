package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"rosterkeeper/internal/client/models"
)

// groupPayload is the wire shape of a group record.
type groupPayload struct {
	RemoteID       string    `json:"user_group_id,omitempty"`
	Name           string    `json:"group_name"`
	Description    string    `json:"description"`
	LastModifiedAt time.Time `json:"last_modified_at,omitzero"`
}

func (p groupPayload) toModel() models.Group {
	return models.Group{
		RemoteID:       p.RemoteID,
		Name:           p.Name,
		Description:    p.Description,
		LastModifiedAt: p.LastModifiedAt,
	}
}

// GroupGateway exposes the backend group collection to the sync engine.
type GroupGateway struct {
	c *Client
}

// NewGroupGateway returns a gateway bound to the shared Client.
func NewGroupGateway(c *Client) *GroupGateway {
	return &GroupGateway{c: c}
}

// Create posts a new group and returns the record carrying the backend id.
func (g *GroupGateway) Create(ctx context.Context, rec models.Group) (models.Group, error) {
	in := groupPayload{Name: rec.Name, Description: rec.Description, LastModifiedAt: rec.LastModifiedAt}
	var out groupPayload
	if err := g.c.do(ctx, http.MethodPost, "/api/groups/", in, &out); err != nil {
		return models.Group{}, err
	}
	rec = rec.WithRemoteID(out.RemoteID)
	if !out.LastModifiedAt.IsZero() {
		rec.LastModifiedAt = out.LastModifiedAt
	}
	return rec, nil
}

// Update overwrites the backend record addressed by the remote id.
func (g *GroupGateway) Update(ctx context.Context, rec models.Group) (models.Group, error) {
	in := groupPayload{Name: rec.Name, Description: rec.Description, LastModifiedAt: rec.LastModifiedAt}
	var out groupPayload
	err := g.c.do(ctx, http.MethodPut, "/api/groups/"+url.PathEscape(rec.RemoteID), in, &out)
	if err != nil {
		return models.Group{}, err
	}
	if !out.LastModifiedAt.IsZero() {
		rec.LastModifiedAt = out.LastModifiedAt
	}
	return rec, nil
}

// Delete removes the backend record addressed by the remote id.
func (g *GroupGateway) Delete(ctx context.Context, remoteID string) error {
	return g.c.do(ctx, http.MethodDelete, "/api/groups/"+url.PathEscape(remoteID), nil, nil)
}

// FetchAll lists every backend group. Returned records carry remote
// identity and content only; local identity is assigned by the caller.
func (g *GroupGateway) FetchAll(ctx context.Context) ([]models.Group, error) {
	var payload []groupPayload
	if err := g.c.do(ctx, http.MethodGet, "/api/groups/", nil, &payload); err != nil {
		return nil, err
	}
	result := make([]models.Group, 0, len(payload))
	for _, p := range payload {
		result = append(result, p.toModel())
	}
	return result, nil
}
