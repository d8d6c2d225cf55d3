package gameapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/globalquiz/roomclient/internal/game"
)

// PlayerDetails carries the identity a player presents when creating or
// joining a room. The server mints the player id.
type PlayerDetails struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// RoomSettings is the host-configurable room setup.
type RoomSettings struct {
	Categories      []int64 `json:"categories"`
	MaxPlayers      int     `json:"maxPlayers"`
	TotalRounds     int     `json:"totalRounds"`
	TimePerQuestion int     `json:"timePerQuestion"`
	Language        string  `json:"language"`
}

// RoomJoinResponse is returned from create and join: the current session
// plus the player id the caller must persist as its local identity.
type RoomJoinResponse struct {
	Session  *game.SessionSnapshot `json:"session"`
	PlayerID string                `json:"playerId"`
}

// GetRoom fetches the full current state of a room. Used once per room
// mount and again after a push-channel reconnect to close any gap.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*game.SessionSnapshot, error) {
	body, err := c.get(ctx, roomEndpoint(roomID))
	if err != nil {
		return nil, err
	}
	return game.DecodeSnapshot(body)
}

// CreateRoom creates a room hosted by the given player.
func (c *Client) CreateRoom(ctx context.Context, host PlayerDetails, settings RoomSettings) (*RoomJoinResponse, error) {
	payload := struct {
		HostPlayer   PlayerDetails `json:"hostPlayer"`
		RoomSettings RoomSettings  `json:"roomSettings"`
	}{HostPlayer: host, RoomSettings: settings}

	body, err := c.postJSON(ctx, roomsEndpoint, payload)
	if err != nil {
		return nil, err
	}
	return decodeJoinResponse(body)
}

// JoinRoom adds a player to an existing room.
func (c *Client) JoinRoom(ctx context.Context, roomID string, player PlayerDetails) (*RoomJoinResponse, error) {
	body, err := c.postJSON(ctx, joinRoomEndpoint(roomID), player)
	if err != nil {
		return nil, err
	}
	return decodeJoinResponse(body)
}

// UpdateRoomSettings replaces the room configuration. Host only; the server
// rejects everyone else.
func (c *Client) UpdateRoomSettings(ctx context.Context, roomID string, settings RoomSettings) error {
	_, err := c.putJSON(ctx, roomSettingsEndpoint(roomID), settings)
	return err
}

// TogglePlayerReady flips the ready flag for a player in the lobby.
func (c *Client) TogglePlayerReady(ctx context.Context, roomID, playerID string) error {
	_, err := c.put(ctx, playerReadyEndpoint(roomID, playerID), nil)
	return err
}

// StartGame moves the room out of the lobby. Host only.
func (c *Client) StartGame(ctx context.Context, sessionID string) error {
	_, err := c.post(ctx, startGameEndpoint(sessionID), nil)
	return err
}

// LeaveGame removes a player from the session.
func (c *Client) LeaveGame(ctx context.Context, sessionID, playerID string) error {
	_, err := c.delete(ctx, leaveGameEndpoint(sessionID, playerID))
	return err
}

// Leaderboard returns the players ordered by score, best first.
func (c *Client) Leaderboard(ctx context.Context, sessionID string) ([]game.Player, error) {
	body, err := c.get(ctx, leaderboardEndpoint(sessionID))
	if err != nil {
		return nil, err
	}
	var players []game.Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return players, nil
}

func decodeJoinResponse(body []byte) (*RoomJoinResponse, error) {
	var resp RoomJoinResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode room join response: %w", err)
	}
	if resp.PlayerID == "" {
		return nil, fmt.Errorf("room join response missing playerId")
	}
	return &resp, nil
}
