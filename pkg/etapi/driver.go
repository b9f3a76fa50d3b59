package etapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aretw0/strata/pkg/core"
)

// Client implements core.Driver plus subtree enumeration.
var (
	_ core.Driver     = (*Client)(nil)
	_ core.TreeLister = (*Client)(nil)
)

func (c *Client) GetNote(ctx context.Context, noteID string) (*core.NoteRecord, error) {
	var rec core.NoteRecord
	if err := c.getJSON(ctx, "/notes/"+url.PathEscape(noteID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) CreateNote(ctx context.Context, rec *core.NoteRecord) (*core.NoteRecord, error) {
	var out core.NoteRecord
	if err := c.postJSON(ctx, "/notes", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchNote(ctx context.Context, noteID string, fields map[string]any) (*core.NoteRecord, error) {
	var out core.NoteRecord
	if err := c.patchJSON(ctx, "/notes/"+url.PathEscape(noteID), wireFields(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.delete(ctx, "/notes/"+url.PathEscape(noteID))
}

func (c *Client) GetAttribute(ctx context.Context, attributeID string) (*core.AttributeRecord, error) {
	var rec core.AttributeRecord
	if err := c.getJSON(ctx, "/attributes/"+url.PathEscape(attributeID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) CreateAttribute(ctx context.Context, rec *core.AttributeRecord) (*core.AttributeRecord, error) {
	var out core.AttributeRecord
	if err := c.postJSON(ctx, "/attributes", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchAttribute(ctx context.Context, attributeID string, fields map[string]any) (*core.AttributeRecord, error) {
	var out core.AttributeRecord
	if err := c.patchJSON(ctx, "/attributes/"+url.PathEscape(attributeID), wireFields(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAttribute(ctx context.Context, attributeID string) error {
	return c.delete(ctx, "/attributes/"+url.PathEscape(attributeID))
}

func (c *Client) GetBranch(ctx context.Context, branchID string) (*core.BranchRecord, error) {
	var rec core.BranchRecord
	if err := c.getJSON(ctx, "/branches/"+url.PathEscape(branchID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) CreateBranch(ctx context.Context, rec *core.BranchRecord) (*core.BranchRecord, error) {
	var out core.BranchRecord
	if err := c.postJSON(ctx, "/branches", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchBranch(ctx context.Context, branchID string, fields map[string]any) (*core.BranchRecord, error) {
	var out core.BranchRecord
	if err := c.patchJSON(ctx, "/branches/"+url.PathEscape(branchID), wireFields(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBranch(ctx context.Context, branchID string) error {
	return c.delete(ctx, "/branches/"+url.PathEscape(branchID))
}

func (c *Client) GetContent(ctx context.Context, noteID string) ([]byte, error) {
	var data []byte
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(noteID)+"/content", nil, "", &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) PutContent(ctx context.Context, noteID string, data []byte) error {
	return c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(noteID)+"/content", data, "text/plain", nil)
}

func (c *Client) RefreshNoteOrdering(ctx context.Context, parentNoteID string) error {
	return c.do(ctx, http.MethodPost, "/refresh-note-ordering/"+url.PathEscape(parentNoteID), nil, "", nil)
}

func (c *Client) ListChildBranches(ctx context.Context, parentNoteID string) ([]*core.BranchRecord, error) {
	var out []*core.BranchRecord
	if err := c.getJSON(ctx, "/notes/"+url.PathEscape(parentNoteID)+"/branches", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListNoteAttributes(ctx context.Context, noteID string) ([]*core.AttributeRecord, error) {
	var out []*core.AttributeRecord
	if err := c.getJSON(ctx, "/notes/"+url.PathEscape(noteID)+"/attributes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// wireFields maps the session engine's snake_case field names onto the
// wire's camelCase keys. Unknown names pass through unchanged.
func wireFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "is_inheritable":
			out["isInheritable"] = v
		case "is_expanded":
			out["isExpanded"] = v
		case "note_position":
			out["notePosition"] = v
		default:
			out[k] = v
		}
	}
	return out
}

// Login exchanges a password for an auth token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		AuthToken string `json:"authToken"`
	}
	in := map[string]string{"password": password}
	if err := c.postJSON(ctx, "/auth/login", in, &out); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	c.token = out.AuthToken
	return out.AuthToken, nil
}

// Logout invalidates the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, "", nil)
}

// Backup asks the server to write a named database backup.
func (c *Client) Backup(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/backup/"+url.PathEscape(name), nil, "", nil)
}
