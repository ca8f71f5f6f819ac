// Package songloop wires the game together: the Registry tracks rooms, the
// Coordinator translates websocket intents into room operations and fans the
// resulting events back out through the transport hub. The coordinator owns
// no game logic.
package songloop

import (
	"context"
	"time"

	"github.com/songloop-games/songloop/internal/logging"
	"github.com/songloop-games/songloop/internal/songloop/music"
	"github.com/songloop-games/songloop/internal/songloop/protocol"
	"github.com/songloop-games/songloop/internal/songloop/room"
	"github.com/songloop-games/songloop/internal/songloop/transport"
	"go.uber.org/zap"
)

const lookupTimeout = 10 * time.Second

type CoordinatorConfig struct {
	Resolver music.Resolver
	Stats    room.StatsSink

	RoundEndDelay time.Duration
	GameEndDelay  time.Duration

	Logger *zap.SugaredLogger
}

type Coordinator struct {
	registry *Registry
	hub      *transport.Hub
	resolver music.Resolver
	logger   *zap.SugaredLogger
}

var _ transport.Gateway = (*Coordinator)(nil)

func NewCoordinator(hub *transport.Hub, config CoordinatorConfig) *Coordinator {
	if config.Logger == nil {
		config.Logger = logging.DefaultLogger()
	}

	c := &Coordinator{
		hub:      hub,
		resolver: config.Resolver,
		logger:   config.Logger.Named("coordinator"),
	}
	c.registry = NewRegistry(RegistryConfig{
		Notify:        c.fanOut,
		Stats:         config.Stats,
		RoundEndDelay: config.RoundEndDelay,
		GameEndDelay:  config.GameEndDelay,
		Logger:        config.Logger,
	})
	return c
}

// Registry exposes the room registry for the HTTP listing endpoints.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Connected greets a fresh connection with its identity.
func (c *Coordinator) Connected(client *transport.Client) {
	c.sendFrame(client.ID, protocol.Frame{Type: protocol.FrameWelcome, Data: protocol.WelcomeData{
		ConnID:       client.ID,
		SessionToken: client.Token,
	}})
}

// Disconnected treats a dropped connection as an explicit leave.
func (c *Coordinator) Disconnected(connID string) {
	if _, _, err := c.registry.LeaveCurrent(connID); err == nil {
		c.logger.Infof("connection %s left by disconnect", connID)
	}
}

// Intent dispatches one inbound intent. Rejections go back to the sender as
// error frames; they never tear down the connection.
func (c *Coordinator) Intent(connID string, raw []byte) {
	in, err := protocol.ParseIntent(raw)
	if err != nil {
		c.sendFrame(connID, protocol.ErrorFrame("", err))
		return
	}

	if err := c.dispatch(connID, in); err != nil {
		c.sendFrame(connID, protocol.ErrorFrame(in.Type, err))
	}
}

func (c *Coordinator) dispatch(connID string, in protocol.Intent) error {
	switch in.Type {
	case protocol.IntentCreateRoom:
		var p protocol.CreateRoomPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		settings := room.DefaultSettings()
		if p.Settings != nil {
			settings = *p.Settings
		}
		r, err := c.registry.CreateRoom(connID, p.PlayerName, CreateParams{
			Name:     p.RoomName,
			Private:  p.Private,
			Password: p.Password,
			Settings: settings,
		})
		if err != nil {
			return err
		}
		c.sendFrame(connID, protocol.Frame{Type: room.EventRoomCreated, Data: r.Snapshot()})
		return nil

	case protocol.IntentJoinRoom:
		var p protocol.JoinRoomPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		_, err := c.registry.JoinRoom(connID, p.Code, p.PlayerName, p.Password)
		return err

	case protocol.IntentLeaveRoom:
		_, res, err := c.registry.LeaveCurrent(connID)
		if err != nil {
			return err
		}
		c.sendFrame(connID, protocol.Frame{Type: room.EventPlayerLeft, Data: map[string]interface{}{
			"playerName": res.PlayerName,
			"wasHost":    res.WasHost,
		}})
		return nil

	case protocol.IntentSetReady:
		var p protocol.SetReadyPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		return r.SetReady(connID, p.Ready)

	case protocol.IntentUpdateSettings:
		var p protocol.UpdateSettingsPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		return r.UpdateSettings(connID, p.Settings)

	case protocol.IntentKickPlayer:
		var p protocol.KickPlayerPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		kickedID, _, err := c.registry.Kick(connID, p.PlayerName)
		if err != nil {
			return err
		}
		// the target is already unseated; tell it directly
		c.sendFrame(kickedID, protocol.Frame{Type: room.EventPlayerKicked, Data: map[string]interface{}{
			"playerName": p.PlayerName,
		}})
		return nil

	case protocol.IntentStartGame:
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		return r.StartGame(connID)

	case protocol.IntentChooseSubmitter:
		var p protocol.ChooseSubmitterPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		return r.ChooseSubmitter(connID, p.PlayerName)

	case protocol.IntentSubmitSong:
		var p protocol.SubmitSongPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		return c.submitSong(connID, p)

	case protocol.IntentGuess:
		var p protocol.GuessIntentPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		_, err = r.Guess(connID, room.GuessPayload{
			Title:  p.Title,
			Artist: p.Artist,
			Album:  p.Album,
			Year:   p.Year,
		})
		return err

	case protocol.IntentSkipRound:
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		return r.Skip(connID)

	case protocol.IntentChat:
		var p protocol.ChatPayload
		if err := in.Bind(&p); err != nil {
			return err
		}
		r, err := c.roomOf(connID)
		if err != nil {
			return err
		}
		return r.Chat(connID, p.Text)

	case protocol.IntentListRooms:
		c.sendFrame(connID, protocol.Frame{Type: protocol.FrameRooms, Data: c.registry.ListPublic()})
		return nil

	default:
		return room.NewError(room.CodeValidation, "unknown intent %q", in.Type)
	}
}

// submitSong is the two-phase song path: validate and mark pending under the
// room lock, resolve through the music collaborator unlocked, then re-enter
// the room which revalidates phase, submitter and generation.
func (c *Coordinator) submitSong(connID string, p protocol.SubmitSongPayload) error {
	r, err := c.roomOf(connID)
	if err != nil {
		return err
	}

	gen, err := r.BeginSubmit(connID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	song, err := c.resolver.Resolve(ctx, music.Query{
		Title:    p.Title,
		Artist:   p.Artist,
		Provider: p.Provider,
	})
	if err != nil {
		r.FailSubmit(connID, gen)
		return room.NewError(room.CodeSongNotFound, "no song found for %q", p.Title)
	}

	return r.CompleteSubmit(connID, gen, song)
}

func (c *Coordinator) roomOf(connID string) (*room.Room, error) {
	r, ok := c.registry.Lookup(connID)
	if !ok {
		return nil, room.NewError(room.CodeNotInRoom, "not seated in any room")
	}
	return r, nil
}

// fanOut delivers room events to their recipients and appends a rendered
// system chat line for the transitions worth narrating.
func (c *Coordinator) fanOut(roomID string, events ...room.Event) {
	r, ok := c.registry.Get(roomID)

	for _, ev := range events {
		var to []string
		switch {
		case len(ev.To) > 0:
			to = ev.To
		case ok:
			to = r.MemberIDs()
			if len(ev.Except) > 0 {
				to = subtract(to, ev.Except)
			}
		default:
			continue
		}

		frame, err := protocol.EncodeFrame(protocol.EventFrame(ev))
		if err != nil {
			c.logger.Errorf("encode %s event: %v", ev.Type, err)
			continue
		}
		c.hub.SendMany(to, frame)

		if line := systemLine(ev); line != "" {
			chat, err := protocol.EncodeFrame(protocol.Frame{Type: room.EventChat, Data: map[string]interface{}{
				"playerName": "system",
				"text":       line,
			}})
			if err == nil {
				c.hub.SendMany(to, chat)
			}
		}
	}
}

// systemLine renders the human-readable narration for an event, or "" when
// the event speaks for itself.
func systemLine(ev room.Event) string {
	switch ev.Type {
	case room.EventPlayerJoined:
		if v, ok := ev.Data.(room.View); ok {
			return protocol.RenderPlayerJoined(v.Name)
		}
	case room.EventPlayerLeft, room.EventPlayerKicked:
		if m, ok := ev.Data.(map[string]interface{}); ok {
			if name, ok := m["playerName"].(string); ok {
				return protocol.RenderPlayerLeft(name)
			}
		}
	case room.EventHostChanged:
		if m, ok := ev.Data.(map[string]interface{}); ok {
			if name, ok := m["hostName"].(string); ok {
				return protocol.RenderHostChanged(name)
			}
		}
	case room.EventRoundStarted:
		if v, ok := ev.Data.(room.RoundStartView); ok {
			return protocol.RenderRoundStarted(v.RoundNumber, v.SubmitterName)
		}
	case room.EventRoundEnded:
		if v, ok := ev.Data.(room.RoundEndView); ok {
			return protocol.RenderRoundEnded(v.Song.Title, v.Song.Artist, len(v.CorrectOrder))
		}
	case room.EventGameEnded:
		if m, ok := ev.Data.(map[string]interface{}); ok {
			winner, _ := m["winner"].(string)
			if results, ok := m["results"].([]room.PlayerResult); ok && winner != "" {
				for _, res := range results {
					if res.Winner {
						return protocol.RenderGameEnded(winner, res.Score)
					}
				}
			}
		}
	}
	return ""
}

func (c *Coordinator) sendFrame(connID string, f protocol.Frame) {
	raw, err := protocol.EncodeFrame(f)
	if err != nil {
		c.logger.Errorf("encode %s frame: %v", f.Type, err)
		return
	}
	c.hub.Send(connID, raw)
}

func subtract(ids, except []string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		skip := false
		for _, ex := range except {
			if id == ex {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, id)
		}
	}
	return out
}
