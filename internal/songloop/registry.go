package songloop

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/songloop-games/songloop/internal/hashutil"
	"github.com/songloop-games/songloop/internal/logging"
	"github.com/songloop-games/songloop/internal/songloop/room"
	"go.uber.org/zap"
)

// RoomListing is one entry of the public room list.
type RoomListing struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Status      string        `json:"status"`
	PlayerCount int           `json:"playerCount"`
	Capacity    int           `json:"capacity"`
	Settings    room.Settings `json:"settings"`
}

// CreateParams carries the creator's room request.
type CreateParams struct {
	Name     string
	Private  bool
	Password string
	Settings room.Settings
}

type RegistryConfig struct {
	Notify room.NotifyFn
	Stats  room.StatsSink

	RoundEndDelay time.Duration
	GameEndDelay  time.Duration

	Logger *zap.SugaredLogger
}

// Registry tracks every live room and which room each connection sits in.
// Rooms are keyed by their join code, connections by their id; both maps
// exist under one RWMutex so membership moves are atomic.
type Registry struct {
	mtx sync.RWMutex

	// key: join code
	rooms map[string]*room.Room
	// key: connection id of a seated player
	byConn map[string]string

	config RegistryConfig
	logger *zap.SugaredLogger
}

func NewRegistry(config RegistryConfig) *Registry {
	if config.Stats == nil {
		config.Stats = room.NopStats{}
	}
	if config.Notify == nil {
		config.Notify = func(string, ...room.Event) {}
	}
	if config.Logger == nil {
		config.Logger = logging.DefaultLogger()
	}
	return &Registry{
		rooms:  map[string]*room.Room{},
		byConn: map[string]string{},
		config: config,
		logger: config.Logger.Named("registry"),
	}
}

// CreateRoom makes a new room with connID seated as host. A connection can
// sit in at most one room at a time.
func (rg *Registry) CreateRoom(connID, playerName string, params CreateParams) (*room.Room, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, room.NewError(room.CodeValidation, "player name is required")
	}
	if params.Name == "" {
		params.Name = playerName + "'s room"
	}
	if err := params.Settings.Validate(); err != nil {
		return nil, err
	}

	rg.mtx.Lock()
	defer rg.mtx.Unlock()

	if _, ok := rg.byConn[connID]; ok {
		return nil, room.NewError(room.CodeAlreadyInRoom, "already seated in a room")
	}

	var code string
	for {
		c, err := hashutil.RoomCode()
		if err != nil {
			return nil, err
		}
		if _, taken := rg.rooms[c]; !taken {
			code = c
			break
		}
	}

	r := room.New(room.Config{
		ID:            code,
		Name:          params.Name,
		Private:       params.Private,
		Password:      params.Password,
		Settings:      params.Settings,
		Notify:        rg.config.Notify,
		Stats:         rg.config.Stats,
		RoundEndDelay: rg.config.RoundEndDelay,
		GameEndDelay:  rg.config.GameEndDelay,
		Logger:        rg.config.Logger,
	}, connID, playerName)

	rg.rooms[code] = r
	rg.byConn[connID] = code

	rg.logger.Infof("room %s created by %s", code, playerName)
	return r, nil
}

// JoinRoom seats connID in the room with the given code. The room call runs
// outside the registry lock: joining notifies the room, and event fan-out
// reads back through the registry.
func (rg *Registry) JoinRoom(connID, code, playerName, password string) (*room.Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	rg.mtx.Lock()
	if _, ok := rg.byConn[connID]; ok {
		rg.mtx.Unlock()
		return nil, room.NewError(room.CodeAlreadyInRoom, "already seated in a room")
	}
	r, ok := rg.rooms[code]
	rg.mtx.Unlock()
	if !ok {
		return nil, room.NewError(room.CodeRoomNotFound, "no room with code %s", code)
	}

	if err := r.Join(connID, playerName, password); err != nil {
		return nil, err
	}

	rg.mtx.Lock()
	rg.byConn[connID] = code
	rg.mtx.Unlock()
	return r, nil
}

// LeaveCurrent removes connID from whatever room it sits in. Used for the
// explicit leave intent and for disconnects alike.
func (rg *Registry) LeaveCurrent(connID string) (string, room.LeaveResult, error) {
	rg.mtx.Lock()
	code, ok := rg.byConn[connID]
	r := rg.rooms[code]
	rg.mtx.Unlock()
	if !ok {
		return "", room.LeaveResult{}, room.NewError(room.CodeNotInRoom, "not seated in any room")
	}

	res, err := r.Leave(connID)
	if err != nil {
		return "", room.LeaveResult{}, err
	}

	rg.mtx.Lock()
	delete(rg.byConn, connID)
	if res.Dissolved {
		delete(rg.rooms, code)
		rg.logger.Infof("room %s dissolved", code)
	}
	rg.mtx.Unlock()
	return code, res, nil
}

// Kick removes the named player from the requester's room and unseats the
// kicked connection.
func (rg *Registry) Kick(requesterID, targetName string) (string, room.LeaveResult, error) {
	rg.mtx.Lock()
	code, ok := rg.byConn[requesterID]
	r := rg.rooms[code]
	rg.mtx.Unlock()
	if !ok {
		return "", room.LeaveResult{}, room.NewError(room.CodeNotInRoom, "not seated in any room")
	}

	kickedID, res, err := r.Kick(requesterID, targetName)
	if err != nil {
		return "", room.LeaveResult{}, err
	}

	rg.mtx.Lock()
	delete(rg.byConn, kickedID)
	if res.Dissolved {
		delete(rg.rooms, code)
	}
	rg.mtx.Unlock()
	return kickedID, res, nil
}

// Lookup returns the room connID currently sits in.
func (rg *Registry) Lookup(connID string) (*room.Room, bool) {
	rg.mtx.RLock()
	defer rg.mtx.RUnlock()
	code, ok := rg.byConn[connID]
	if !ok {
		return nil, false
	}
	r, ok := rg.rooms[code]
	return r, ok
}

// Get returns the room with the given join code.
func (rg *Registry) Get(code string) (*room.Room, bool) {
	rg.mtx.RLock()
	defer rg.mtx.RUnlock()
	r, ok := rg.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// ListPublic returns the joinable non-private rooms, sorted by code for a
// stable listing.
func (rg *Registry) ListPublic() []RoomListing {
	rg.mtx.RLock()
	rooms := make([]*room.Room, 0, len(rg.rooms))
	for _, r := range rg.rooms {
		if !r.Private() {
			rooms = append(rooms, r)
		}
	}
	rg.mtx.RUnlock()

	listings := make([]RoomListing, 0, len(rooms))
	for _, r := range rooms {
		snap := r.Snapshot()
		listings = append(listings, RoomListing{
			Code:        snap.ID,
			Name:        snap.Name,
			Status:      snap.Status,
			PlayerCount: len(snap.Players),
			Capacity:    snap.Capacity,
			Settings:    snap.Settings,
		})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Code < listings[j].Code })
	return listings
}

// RoomCount is exposed for the health endpoint.
func (rg *Registry) RoomCount() int {
	rg.mtx.RLock()
	defer rg.mtx.RUnlock()
	return len(rg.rooms)
}
