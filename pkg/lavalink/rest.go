package lavalink

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
)

func (n *Node) restURL(path string) string {
	scheme := "http"
	if n.config.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, n.config.Host, n.config.Port, path)
}

// request performs an authenticated call against the node's HTTP API.
// Transport failures are wrapped with node-identifying context.
func (n *Node) request(method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequest(method, n.restURL(path), body)
	if err != nil {
		return 0, nil, fmt.Errorf("node %s: %w", n.Identifier(), err)
	}
	req.Header.Set("Authorization", n.config.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.rest.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("node %s: %w", n.Identifier(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("node %s: %w", n.Identifier(), err)
	}
	return resp.StatusCode, data, nil
}

// MakeRequest performs a generic request against the node's HTTP API and
// returns the raw response body. Non-200 responses are passed through to the
// caller rather than treated as errors.
func (n *Node) MakeRequest(method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	_, data, err := n.request(method, path, reader)
	return data, err
}

// LoadTracks resolves an identifier (URL or "<source>:<query>") into track
// candidates via the node's loadtracks endpoint.
func (n *Node) LoadTracks(identifier string) (*LoadResult, error) {
	path := "/loadtracks?identifier=" + url.QueryEscape(identifier)
	_, data, err := n.request(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	result := new(LoadResult)
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Identifier(), err)
	}
	return result, nil
}

// DecodeTrack decodes an opaque track token into its metadata. A 500 from the
// node means the token is unknown and yields ErrTrackNotFound.
func (n *Node) DecodeTrack(encoded string) (*TrackInfo, error) {
	path := "/decodetrack?track=" + url.QueryEscape(encoded)
	status, data, err := n.request(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusInternalServerError {
		return nil, ErrTrackNotFound
	}

	info := new(TrackInfo)
	if err := json.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Identifier(), err)
	}
	return info, nil
}

// RoutePlannerStatus fetches the node's route planner status. The body is
// returned as-is; nodes without a route planner answer with a null class.
func (n *Node) RoutePlannerStatus() (json.RawMessage, error) {
	_, data, err := n.request(http.MethodGet, "/routeplanner/status", nil)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// RoutePlannerFreeAddress unmarks a blocked address on the node's route
// planner.
func (n *Node) RoutePlannerFreeAddress(address string) error {
	body, err := json.Marshal(map[string]string{"address": address})
	if err != nil {
		return err
	}
	_, _, err = n.request(http.MethodPost, "/routeplanner/free/address", bytes.NewReader(body))
	return err
}
