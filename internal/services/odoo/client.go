package odoo

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/xelth-com/branchsync/internal/config"
)

// Client is an XML-RPC client for the remote (Main) deployment. It exposes
// the generic record-store surface the replication layer is built on:
// authenticate, search, search_read, create, write, unlink and arbitrary
// model methods (action_post and friends).
type Client struct {
	URL        string
	Database   string
	Username   string
	Password   string
	Uid        int
	CommonURL  string
	ObjectURL  string
	HttpClient *http.Client
}

// NewClient creates a client from remote connection settings
func NewClient(cfg config.RemoteConfig) *Client {
	return &Client{
		URL:        cfg.URL,
		Database:   cfg.Database,
		Username:   cfg.Username,
		Password:   cfg.Password,
		CommonURL:  fmt.Sprintf("%s/xmlrpc/2/common", cfg.URL),
		ObjectURL:  fmt.Sprintf("%s/xmlrpc/2/object", cfg.URL),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate authenticates against the remote and caches the user ID.
// A zero uid means the remote rejected the credentials.
func (c *Client) Authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("authentication rejected for user %q on database %q", c.Username, c.Database)
	}

	c.Uid = uid
	return uid, nil
}

// executeKw performs a single execute_kw round-trip.
func (c *Client) executeKw(model, method string, args []interface{}, kwargs map[string]interface{}, result interface{}) error {
	client, err := xmlrpc.NewClient(c.ObjectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	call := []interface{}{c.Database, c.Uid, c.Password, model, method, args}
	if kwargs != nil {
		call = append(call, kwargs)
	}

	if err := client.Call("execute_kw", call, result); err != nil {
		return fmt.Errorf("%s.%s failed: %w", model, method, err)
	}
	return nil
}

// SearchRead searches a model and reads the requested fields in one call.
func (c *Client) SearchRead(model string, domain Domain, fields []string, limit int) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	err := c.executeKw(model, "search_read",
		[]interface{}{domain.raw()},
		map[string]interface{}{"fields": fields, "limit": limit},
		&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Search returns matching record IDs.
func (c *Client) Search(model string, domain Domain, limit int) ([]int64, error) {
	kwargs := map[string]interface{}{}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	var ids []int64
	if err := c.executeKw(model, "search", []interface{}{domain.raw()}, kwargs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Create creates a new record and returns its remote ID.
func (c *Client) Create(model string, values map[string]interface{}) (int64, error) {
	var id int64
	if err := c.executeKw(model, "create", []interface{}{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Write updates existing record(s).
func (c *Client) Write(model string, ids []int64, values map[string]interface{}) error {
	var ok bool
	if err := c.executeKw(model, "write", []interface{}{ids, values}, nil, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s.write returned false", model)
	}
	return nil
}

// Unlink deletes record(s).
func (c *Client) Unlink(model string, ids []int64) error {
	var ok bool
	if err := c.executeKw(model, "unlink", []interface{}{ids}, nil, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s.unlink returned false", model)
	}
	return nil
}

// Execute calls a state-transition method (action_post, button_draft, ...)
// on the given record ids.
func (c *Client) Execute(model, method string, ids []int64) error {
	var result interface{}
	return c.executeKw(model, method, []interface{}{ids}, nil, &result)
}
