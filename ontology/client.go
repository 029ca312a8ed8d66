package ontology

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	// DefaultBaseURL is the RMA query endpoint of the Allen Brain Atlas API.
	DefaultBaseURL = "http://api.brain-map.org/api/v2/data/query.json"
	// AdultMouseGraphID identifies the adult mouse structure graph.
	AdultMouseGraphID = 1
)

// Client queries structure graphs from an RMA service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for DefaultBaseURL.
func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// envelope is the RMA response wrapper. On failure msg holds a string.
type envelope struct {
	Success   bool            `json:"success"`
	ID        int             `json:"id"`
	StartRow  int             `json:"start_row"`
	NumRows   int             `json:"num_rows"`
	TotalRows int             `json:"total_rows"`
	Msg       json.RawMessage `json:"msg"`
}

// StructuresWithSets downloads every structure of the given graphs along with
// their structure set memberships, ordered by graph order, and cleans them.
func (c *Client) StructuresWithSets(ctx context.Context, graphIDs ...int) ([]Structure, error) {
	if len(graphIDs) == 0 {
		graphIDs = []int{AdultMouseGraphID}
	}
	raws, err := c.query(ctx, structuresCriteria(graphIDs))
	if err != nil {
		return nil, err
	}
	return Clean(raws)
}

func structuresCriteria(graphIDs []int) string {
	in := ""
	for i, id := range graphIDs {
		if i > 0 {
			in += ","
		}
		in += fmt.Sprint(id)
	}
	return "model::Structure," +
		"rma::criteria,[graph_id$in" + in + "]," +
		"rma::include,structure_sets," +
		"rma::options[num_rows$eqall][order$eq'structures.graph_order']"
}

func (c *Client) query(ctx context.Context, criteria string) ([]RawStructure, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	q := u.Query()
	q.Set("criteria", criteria)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "rma query")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("rma query: server returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decode rma envelope")
	}
	if !env.Success {
		var msg string
		if json.Unmarshal(env.Msg, &msg) != nil {
			msg = string(env.Msg)
		}
		return nil, errors.Errorf("rma query failed: %s", msg)
	}
	var raws []RawStructure
	if err := json.Unmarshal(env.Msg, &raws); err != nil {
		return nil, errors.Wrap(err, "decode rma rows")
	}
	if env.NumRows != len(raws) {
		return nil, errors.Errorf("rma query: envelope reports %d rows, got %d", env.NumRows, len(raws))
	}
	return raws, nil
}
