// Package rest is the HTTP adapter for the remote game-logic and room
// services. Every request carries the caller's bearer credential; a 401
// anywhere maps to core.ErrUnauthorized.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kienminh/blockroom/internal/core"
	"github.com/kienminh/blockroom/internal/domain"
)

// Client implements core.GameService and core.RoomService over the game
// server's REST API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) States(ctx context.Context, roomID domain.RoomID) (map[domain.ParticipantID]domain.ParticipantSnapshot, error) {
	var out map[domain.ParticipantID]domain.ParticipantSnapshot
	path := fmt.Sprintf("/api/multigame/room/%s/states", roomID)
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// action path segments as the game server names them.
var actionPaths = map[domain.Action]string{
	domain.ActionMoveLeft:  "moveLeft",
	domain.ActionMoveRight: "moveRight",
	domain.ActionRotate:    "rotate",
	domain.ActionSoftDrop:  "tick",
	domain.ActionHardDrop:  "drop",
}

func (c *Client) SendAction(ctx context.Context, id domain.ParticipantID, action domain.Action) (domain.ParticipantSnapshot, error) {
	seg, ok := actionPaths[action]
	if !ok {
		return domain.ParticipantSnapshot{}, fmt.Errorf("unknown action %q", action)
	}
	var out domain.ParticipantSnapshot
	path := fmt.Sprintf("/api/multigame/player/%s/%s", id, seg)
	if err := c.do(ctx, http.MethodPost, path, &out); err != nil {
		if apiErr, ok := asAPIError(err); ok {
			return domain.ParticipantSnapshot{}, &domain.ActionRejectedError{Action: action, Message: apiErr.Message}
		}
		return domain.ParticipantSnapshot{}, err
	}
	return out, nil
}

func (c *Client) RoomComplete(ctx context.Context, roomID domain.RoomID) (bool, error) {
	var out bool
	path := fmt.Sprintf("/api/multigame/room/%s/isComplete", roomID)
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return false, err
	}
	return out, nil
}

func (c *Client) Rankings(ctx context.Context, roomID domain.RoomID) ([]domain.RankingEntry, error) {
	var out []domain.RankingEntry
	path := fmt.Sprintf("/api/multigame/room/%s/rankings", roomID)
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Room(ctx context.Context, roomID domain.RoomID) (domain.Roster, error) {
	var out domain.Roster
	path := fmt.Sprintf("/api/rooms/%s", roomID)
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return domain.Roster{}, err
	}
	if out.RoomID == "" {
		out.RoomID = roomID
	}
	return out, nil
}

func (c *Client) StartRoom(ctx context.Context, roomID domain.RoomID) error {
	path := fmt.Sprintf("/api/multigame/start/%s", roomID)
	return c.do(ctx, http.MethodPost, path, nil)
}

// apiError is a non-2xx response body: {"error": "...", "message": "..."}.
type apiError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Code)
}

func asAPIError(err error) (*apiError, bool) {
	apiErr, ok := err.(*apiError)
	return apiErr, ok
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return core.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		if body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil {
				apiErr.Message = strings.TrimSpace(string(body))
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = apiErr.Code
		}
		log.Debug().Str("module", "adapters.rest").Str("path", path).Int("status", resp.StatusCode).Msg("request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
