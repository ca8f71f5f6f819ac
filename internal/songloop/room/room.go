// Package room implements the game aggregate: the player set, the settings,
// the round lifecycle and the scoring rules. A room is the unit of mutual
// exclusion; every mutating operation runs under one mutex, builds its
// outbound events from snapshot values and hands them to the notify sink
// only after the lock is released.
package room

import (
	"strings"
	"sync"
	"time"

	"github.com/songloop-games/songloop/internal/logging"
	"github.com/songloop-games/songloop/internal/songloop/lyrics"
	"go.uber.org/zap"
)

type Status uint8

const (
	StatusWaiting Status = iota + 1
	StatusWaitingSubmitter
	StatusWaitingSong
	StatusPlaying
	StatusRoundEnd
	StatusGameEnd
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusWaitingSubmitter:
		return "waiting_submitter"
	case StatusWaitingSong:
		return "waiting_song"
	case StatusPlaying:
		return "playing"
	case StatusRoundEnd:
		return "round_end"
	case StatusGameEnd:
		return "game_end"
	}
	return "unknown"
}

const (
	defaultCapacity      = 12
	defaultRoundEndDelay = 8 * time.Second
	defaultGameEndDelay  = 10 * time.Second
)

// Round termination reasons carried in the round_ended payload.
const (
	ReasonTimeout     = "timeout"
	ReasonSkipped     = "skipped"
	ReasonAllGuessed  = "all_guessed"
	ReasonFirstGuess  = "first_correct"
	ReasonPlayersLeft = "players_left"
)

type Config struct {
	ID       string
	Name     string
	Private  bool
	Password string
	Capacity int
	Settings Settings

	Notify NotifyFn
	Stats  StatsSink

	RoundEndDelay time.Duration
	GameEndDelay  time.Duration

	Logger *zap.SugaredLogger
}

type Room struct {
	mtx sync.Mutex

	id       string
	name     string
	private  bool
	password string
	capacity int
	settings Settings

	status  Status
	players map[string]*Player
	order   []string

	current *Round
	history []Round

	// submitter designated for the round being prepared
	submitterID   string
	submitterName string
	pendingSubmit bool

	// gen stamps the round lifecycle; timers and delayed continuations carry
	// the generation they were armed with and no-op when it has moved on.
	gen   uint64
	timer *time.Timer

	destroyed bool

	roundEndDelay time.Duration
	gameEndDelay  time.Duration

	notify NotifyFn
	stats  StatsSink
	logger *zap.SugaredLogger
}

// New creates a room with its creator seated as host, auto-ready.
func New(config Config, creatorID, creatorName string) *Room {
	if config.Capacity <= 0 {
		config.Capacity = defaultCapacity
	}
	if config.RoundEndDelay <= 0 {
		config.RoundEndDelay = defaultRoundEndDelay
	}
	if config.GameEndDelay <= 0 {
		config.GameEndDelay = defaultGameEndDelay
	}
	if config.Notify == nil {
		config.Notify = func(string, ...Event) {}
	}
	if config.Stats == nil {
		config.Stats = NopStats{}
	}
	if config.Logger == nil {
		config.Logger = logging.DefaultLogger().Named("room")
	}

	r := &Room{
		id:            config.ID,
		name:          config.Name,
		private:       config.Private,
		password:      config.Password,
		capacity:      config.Capacity,
		settings:      config.Settings,
		status:        StatusWaiting,
		players:       map[string]*Player{},
		roundEndDelay: config.RoundEndDelay,
		gameEndDelay:  config.GameEndDelay,
		notify:        config.Notify,
		stats:         config.Stats,
		logger:        config.Logger.With("room", config.ID),
	}

	host := newPlayer(creatorID, creatorName, true)
	r.players[creatorID] = host
	r.order = append(r.order, creatorID)

	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) Private() bool { return r.private }

// Snapshot returns a consistent outside view of the room.
func (r *Room) Snapshot() Snapshot {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:            r.id,
		Name:          r.name,
		Private:       r.private,
		Status:        r.status.String(),
		Settings:      r.settings,
		Capacity:      r.capacity,
		RoundsPlayed:  len(r.history),
		SubmitterName: r.submitterName,
	}
	if r.current != nil {
		snap.RoundNumber = r.current.Number
	}
	for _, id := range r.order {
		p := r.players[id]
		if p.Host {
			snap.HostName = p.Name
		}
		snap.Players = append(snap.Players, p.view())
	}
	return snap
}

// Join seats a new player. Rejected while a game is in progress.
func (r *Room) Join(playerID, name, password string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewError(CodeValidation, "player name is required")
	}

	r.mtx.Lock()
	if r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeRoomNotFound, "room no longer exists")
	}
	if r.status != StatusWaiting {
		r.mtx.Unlock()
		return NewError(CodeGameInProgress, "game already in progress")
	}
	if len(r.players) >= r.capacity {
		r.mtx.Unlock()
		return NewError(CodeRoomFull, "room is full")
	}
	if r.password != "" && r.password != password {
		r.mtx.Unlock()
		return NewError(CodeInvalidPass, "wrong password")
	}
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			r.mtx.Unlock()
			return NewError(CodeNameTaken, "name %q is already taken", name)
		}
	}

	p := newPlayer(playerID, name, false)
	r.players[playerID] = p
	r.order = append(r.order, playerID)

	evs := []Event{
		{Type: EventRoomJoined, To: []string{playerID}, Data: r.snapshotLocked()},
		{Type: EventPlayerJoined, Except: []string{playerID}, Data: p.view()},
	}
	r.mtx.Unlock()

	r.logger.Infof("player %s joined", name)
	r.notify(r.id, evs...)
	return nil
}

// LeaveResult tells the registry what a removal did to the room.
type LeaveResult struct {
	PlayerName  string
	WasHost     bool
	Dissolved   bool
	NewHostName string
}

// Leave removes a player, promoting a new host or dissolving the room as
// needed. Used for explicit leave and for disconnects alike.
func (r *Room) Leave(playerID string) (LeaveResult, error) {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return LeaveResult{}, NewError(CodeNotInRoom, "not a member of this room")
	}

	res, evs := r.removeLocked(p, EventPlayerLeft)
	r.mtx.Unlock()

	r.notify(r.id, evs...)
	return res, nil
}

// Kick removes targetName from the room. Host only; the host cannot be
// kicked. Returns the kicked player's connection id.
func (r *Room) Kick(requesterID, targetName string) (string, LeaveResult, error) {
	r.mtx.Lock()
	req, ok := r.players[requesterID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return "", LeaveResult{}, NewError(CodeNotInRoom, "not a member of this room")
	}
	if !req.Host {
		r.mtx.Unlock()
		return "", LeaveResult{}, NewError(CodeNotHost, "only the host can kick")
	}

	var target *Player
	for _, p := range r.players {
		if strings.EqualFold(p.Name, targetName) {
			target = p
			break
		}
	}
	if target == nil {
		r.mtx.Unlock()
		return "", LeaveResult{}, NewError(CodePlayerNotFound, "no player named %q", targetName)
	}
	if target.Host {
		r.mtx.Unlock()
		return "", LeaveResult{}, NewError(CodeCannotKickHost, "the host cannot be kicked")
	}

	kickedID := target.ID
	res, evs := r.removeLocked(target, EventPlayerKicked)
	r.mtx.Unlock()

	r.logger.Infof("player %s kicked by host", targetName)
	r.notify(r.id, evs...)
	return kickedID, res, nil
}

// removeLocked takes a player out of the room and settles every consequence:
// host transfer, submitter fallback, round completion, game abort on
// underpopulation, dissolution on empty.
func (r *Room) removeLocked(p *Player, eventType string) (LeaveResult, []Event) {
	res := LeaveResult{PlayerName: p.Name, WasHost: p.Host}

	delete(r.players, p.ID)
	for i, id := range r.order {
		if id == p.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	evs := []Event{{Type: eventType, Data: map[string]interface{}{
		"playerName": p.Name,
		"wasHost":    p.Host,
	}}}

	if len(r.players) == 0 {
		res.Dissolved = true
		r.destroyLocked()
		evs = append(evs, Event{Type: EventRoomDissolved})
		return res, evs
	}

	if p.Host {
		next := r.players[r.order[0]]
		next.Host = true
		next.Ready = true
		res.NewHostName = next.Name
		evs = append(evs, Event{Type: EventHostChanged, Data: map[string]interface{}{
			"hostName": next.Name,
		}})
	}

	inGame := r.status != StatusWaiting

	if inGame && len(r.players) < 2 {
		evs = append(evs, r.abortGameLocked()...)
		return res, evs
	}

	switch r.status {
	case StatusWaitingSubmitter:
		// nothing extra: the host picks among the remaining players
	case StatusWaitingSong:
		if r.submitterID == p.ID {
			r.submitterID, r.submitterName = "", ""
			r.pendingSubmit = false
			r.status = StatusWaitingSubmitter
			evs = append(evs, Event{Type: EventNeedsSubmitter, Data: map[string]interface{}{
				"roundNumber": len(r.history) + 1,
			}})
		}
	case StatusPlaying:
		if r.completionLocked(false) {
			evs = append(evs, r.endRoundLocked(ReasonPlayersLeft)...)
		}
	}

	return res, evs
}

func (r *Room) destroyLocked() {
	r.destroyed = true
	r.stopTimerLocked()
	r.gen++
	r.current = nil
}

// abortGameLocked returns the room to waiting when too few players remain to
// keep a game meaningful.
func (r *Room) abortGameLocked() []Event {
	r.stopTimerLocked()
	r.gen++
	r.current = nil
	r.submitterID, r.submitterName = "", ""
	r.pendingSubmit = false
	r.status = StatusWaiting
	for _, p := range r.players {
		p.resetGame()
		p.Ready = p.Host
	}
	r.logger.Infof("game aborted, too few players")
	return []Event{{Type: EventRoomUpdated, Data: r.snapshotLocked()}}
}

// SetReady toggles a player's ready flag while the room is waiting.
func (r *Room) SetReady(playerID string, ready bool) error {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeNotInRoom, "not a member of this room")
	}
	if r.status != StatusWaiting {
		r.mtx.Unlock()
		return NewError(CodeWrongPhase, "ready can only change while waiting")
	}

	p.Ready = ready || p.Host
	ev := Event{Type: EventPlayerReady, Data: map[string]interface{}{
		"playerName": p.Name,
		"ready":      p.Ready,
	}}
	r.mtx.Unlock()

	r.notify(r.id, ev)
	return nil
}

// UpdateSettings replaces the settings. Host only, waiting only.
func (r *Room) UpdateSettings(playerID string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeNotInRoom, "not a member of this room")
	}
	if !p.Host {
		r.mtx.Unlock()
		return NewError(CodeNotHost, "only the host can change settings")
	}
	if r.status != StatusWaiting {
		r.mtx.Unlock()
		return NewError(CodeWrongPhase, "settings are locked once the game started")
	}

	r.settings = s
	ev := Event{Type: EventRoomUpdated, Data: r.snapshotLocked()}
	r.mtx.Unlock()

	r.notify(r.id, ev)
	return nil
}

// StartGame begins a new game: host only, at least two players, every
// non-host player ready. Cumulative player stats reset to zero.
func (r *Room) StartGame(playerID string) error {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeNotInRoom, "not a member of this room")
	}
	if !p.Host {
		r.mtx.Unlock()
		return NewError(CodeNotHost, "only the host can start the game")
	}
	if r.status != StatusWaiting {
		r.mtx.Unlock()
		return NewError(CodeWrongPhase, "game already started")
	}
	if len(r.players) < 2 {
		r.mtx.Unlock()
		return NewError(CodeNotEnough, "at least two players are needed")
	}
	for _, member := range r.players {
		if !member.Host && !member.Ready {
			r.mtx.Unlock()
			return NewError(CodeNotReady, "%s is not ready", member.Name)
		}
	}

	for _, member := range r.players {
		member.resetGame()
	}
	r.history = nil
	r.current = nil
	r.submitterID, r.submitterName = "", ""
	r.gen++
	r.status = StatusWaitingSubmitter

	snap := r.snapshotLocked()
	evs := []Event{
		{Type: EventGameStarted, Data: snap},
		{Type: EventNeedsSubmitter, Data: map[string]interface{}{"roundNumber": 1}},
	}
	r.mtx.Unlock()

	r.logger.Infof("game started with %d players", len(snap.Players))
	r.stats.OnGameStart(snap)
	r.notify(r.id, evs...)
	return nil
}

// ChooseSubmitter designates a connected player to supply this round's song.
func (r *Room) ChooseSubmitter(playerID, targetName string) error {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeNotInRoom, "not a member of this room")
	}
	if !p.Host {
		r.mtx.Unlock()
		return NewError(CodeNotHost, "only the host picks the submitter")
	}
	if r.status != StatusWaitingSubmitter {
		r.mtx.Unlock()
		return NewError(CodeWrongPhase, "not waiting for a submitter")
	}

	var target *Player
	for _, member := range r.players {
		if strings.EqualFold(member.Name, targetName) {
			target = member
			break
		}
	}
	if target == nil || !target.Connected {
		r.mtx.Unlock()
		return NewError(CodePlayerNotFound, "no connected player named %q", targetName)
	}

	r.submitterID = target.ID
	r.submitterName = target.Name
	r.pendingSubmit = false
	r.status = StatusWaitingSong

	ev := Event{Type: EventSubmitterSelected, Data: map[string]interface{}{
		"submitterName": target.Name,
		"roundNumber":   len(r.history) + 1,
	}}
	r.mtx.Unlock()

	r.notify(r.id, ev)
	return nil
}

// BeginSubmit validates that playerID may supply the song right now and
// marks the lookup as in flight. It returns the round generation the caller
// must present to CompleteSubmit: the music lookup runs outside the room
// lock, and the room may have moved on by the time it finishes.
func (r *Room) BeginSubmit(playerID string) (uint64, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.players[playerID]; !ok || r.destroyed {
		return 0, NewError(CodeNotInRoom, "not a member of this room")
	}
	if r.status != StatusWaitingSong {
		return 0, NewError(CodeWrongPhase, "not waiting for a song")
	}
	if r.submitterID != playerID {
		return 0, NewError(CodeNotSubmitter, "only the chosen submitter may submit")
	}
	if r.pendingSubmit {
		return 0, NewError(CodeWrongPhase, "a submission is already being resolved")
	}

	r.pendingSubmit = true
	return r.gen, nil
}

// FailSubmit clears the in-flight submission after a failed lookup, leaving
// the room in waiting_song for another attempt.
func (r *Room) FailSubmit(playerID string, gen uint64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.destroyed || r.gen != gen || r.submitterID != playerID {
		return
	}
	r.pendingSubmit = false
}

// CompleteSubmit re-validates the room state after the external lookup and
// starts the round. No transition happens when the lyrics cannot yield an
// excerpt of the configured length.
func (r *Room) CompleteSubmit(playerID string, gen uint64, song GameSong) error {
	r.mtx.Lock()
	if r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeRoomNotFound, "room no longer exists")
	}
	if r.gen != gen || r.status != StatusWaitingSong || r.submitterID != playerID || !r.pendingSubmit {
		r.mtx.Unlock()
		return NewError(CodeStaleSubmit, "the room moved on while the song was resolving")
	}

	slice := lyrics.Excerpt(song.Lyrics, r.settings.LyricLineCount)
	if slice == nil {
		r.pendingSubmit = false
		r.mtx.Unlock()
		return NewError(CodeLyricsTooShort, "the song's lyrics cannot fill %d lines", r.settings.LyricLineCount)
	}

	submitter := r.players[playerID]
	song.SubmitterName = submitter.Name
	submitter.SongsSubmitted++

	now := time.Now()
	duration := r.settings.RoundDuration()
	r.current = &Round{
		Number:        len(r.history) + 1,
		Song:          song,
		Slice:         *slice,
		StartedAt:     now,
		Active:        true,
		SubmitterID:   playerID,
		SubmitterName: submitter.Name,
	}
	for _, member := range r.players {
		member.resetRound()
	}
	r.pendingSubmit = false
	r.status = StatusPlaying
	r.gen++
	r.armTimerLocked(duration, r.gen)

	ev := Event{Type: EventRoundStarted, Data: RoundStartView{
		RoundNumber:   r.current.Number,
		SubmitterName: submitter.Name,
		Slice:         *slice,
		StartedAt:     now.UnixMilli(),
		EndsAt:        now.Add(duration).UnixMilli(),
		MaxGuesses:    r.settings.MaxGuessesPerRound,
	}}
	number := r.current.Number
	r.mtx.Unlock()

	r.logger.Infof("round %d started, submitter %s", number, song.SubmitterName)
	r.stats.OnSongSubmit(song)
	r.notify(r.id, ev)
	return nil
}

// GuessOutcome is the immediate result returned to the guesser.
type GuessOutcome struct {
	Correct          bool
	Delta            int
	RemainingGuesses int
	RoundEnded       bool
}

// Guess processes one guess under the room lock: matching, scoring, the
// first-correct bonus in serialized arrival order and the round-completion
// predicate all resolve here.
func (r *Room) Guess(playerID string, payload GuessPayload) (GuessOutcome, error) {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return GuessOutcome{}, NewError(CodeNotInRoom, "not a member of this room")
	}
	if r.status != StatusPlaying || r.current == nil || !r.current.Active {
		r.mtx.Unlock()
		return GuessOutcome{}, NewError(CodeNoActiveRound, "no round is running")
	}

	round := r.current

	// Ineligible guessers: their lines are mirrored to the spectator group
	// (the submitter plus everyone who already guessed correctly) so they can
	// follow along. The submitter matching its own song is the degenerate
	// self-match and costs points.
	if playerID == round.SubmitterID {
		matched := Matches(payload.text(), round.Song.Title, round.Song.Artist)
		var delta int
		var evs []Event
		if matched && !round.SubmitterPenalized {
			// Charged at most once per round.
			round.SubmitterPenalized = true
			delta = selfGuessPenalty
			p.Score += delta
			evs = append(evs, Event{Type: EventRoomUpdated, Data: r.snapshotLocked()})
		}
		result := GuessResult{
			PlayerName: p.Name,
			Text:       payload.text(),
			Correct:    matched,
			At:         time.Now(),
			Delta:      delta,
			Guessed:    payload.summary(),
		}
		evs = append(evs, r.spectatorGuessLocked(p, payload))
		r.mtx.Unlock()
		r.stats.OnGuess(result)
		r.notify(r.id, evs...)
		return GuessOutcome{}, NewError(CodeSubmitterGuess, "the submitter cannot guess")
	}
	if p.GuessedThisRound {
		result := GuessResult{
			PlayerName: p.Name,
			Text:       payload.text(),
			Correct:    Matches(payload.text(), round.Song.Title, round.Song.Artist),
			At:         time.Now(),
			Guessed:    payload.summary(),
		}
		ev := r.spectatorGuessLocked(p, payload)
		r.mtx.Unlock()
		r.stats.OnGuess(result)
		r.notify(r.id, ev)
		return GuessOutcome{}, NewError(CodeAlreadyCorrect, "you already guessed this round")
	}
	if p.RoundGuesses >= r.settings.MaxGuessesPerRound {
		r.mtx.Unlock()
		return GuessOutcome{}, NewError(CodeNoMoreGuesses, "no guesses left this round")
	}

	p.RoundGuesses++
	p.TotalGuesses++

	correct := Matches(payload.text(), round.Song.Title, round.Song.Artist)
	var delta int
	if correct {
		delta = guesserDelta(len(round.CorrectOrder) == 0)
		p.Score += delta
		p.CorrectGuesses++
		p.GuessedThisRound = true
		round.CorrectOrder = append(round.CorrectOrder, p.Name)
	}

	result := GuessResult{
		PlayerName: p.Name,
		Text:       payload.text(),
		Correct:    correct,
		At:         time.Now(),
		Ordinal:    p.RoundGuesses,
		Delta:      delta,
		Guessed:    payload.summary(),
	}
	round.Guesses = append(round.Guesses, result)

	outcome := GuessOutcome{
		Correct:          correct,
		Delta:            delta,
		RemainingGuesses: r.settings.MaxGuessesPerRound - p.RoundGuesses,
	}

	correctCount := len(round.CorrectOrder)

	// The completion predicate and the timer race over the same transition;
	// both run inside this lock, so exactly one wins. Resolved before the
	// guess_result view is built so the view reports the ended round.
	var endEvs []Event
	switch {
	case r.settings.EndOnFirstCorrect && correct:
		outcome.RoundEnded = true
		endEvs = r.endRoundLocked(ReasonFirstGuess)
	case r.completionLocked(correct):
		outcome.RoundEnded = true
		endEvs = r.endRoundLocked(ReasonAllGuessed)
	}

	evs := []Event{
		{Type: EventGuessResult, To: []string{playerID}, Data: GuessOutcomeView{
			Correct:          correct,
			Delta:            delta,
			RemainingGuesses: outcome.RemainingGuesses,
			RoundEnded:       outcome.RoundEnded,
			Guessed:          result.Guessed,
		}},
		{Type: EventPlayerGuessed, Data: PlayerGuessedView{
			PlayerName:   p.Name,
			Correct:      correct,
			Ordinal:      result.Ordinal,
			CorrectCount: correctCount,
		}},
	}
	evs = append(evs, endEvs...)
	r.mtx.Unlock()

	r.stats.OnGuess(result)
	r.notify(r.id, evs...)
	return outcome, nil
}

// spectatorGuessLocked mirrors a guess line to the viewers who can no longer
// guess themselves.
func (r *Room) spectatorGuessLocked(from *Player, payload GuessPayload) Event {
	var to []string
	for id, member := range r.players {
		if id == r.current.SubmitterID || member.GuessedThisRound {
			to = append(to, id)
		}
	}
	return Event{Type: EventSpectatorGuess, To: to, Data: map[string]interface{}{
		"playerName": from.Name,
		"text":       payload.text(),
		"guessed":    payload.summary(),
	}}
}

// completionLocked reports whether every non-submitter has either guessed
// correctly or run out of guesses.
func (r *Room) completionLocked(lastWasCorrect bool) bool {
	if r.settings.EndOnFirstCorrect && lastWasCorrect {
		return true
	}
	for id, p := range r.players {
		if id == r.current.SubmitterID {
			continue
		}
		if !p.GuessedThisRound && p.RoundGuesses < r.settings.MaxGuessesPerRound {
			return false
		}
	}
	return true
}

// Skip force-ends the running round. Host only.
func (r *Room) Skip(playerID string) error {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeNotInRoom, "not a member of this room")
	}
	if !p.Host {
		r.mtx.Unlock()
		return NewError(CodeNotHost, "only the host can skip")
	}
	if r.status != StatusPlaying || r.current == nil {
		r.mtx.Unlock()
		return NewError(CodeNoActiveRound, "no round is running")
	}

	evs := r.endRoundLocked(ReasonSkipped)
	r.mtx.Unlock()

	r.notify(r.id, evs...)
	return nil
}

// Chat relays a plain chat line to the whole room.
func (r *Room) Chat(playerID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewError(CodeValidation, "empty message")
	}

	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || r.destroyed {
		r.mtx.Unlock()
		return NewError(CodeNotInRoom, "not a member of this room")
	}
	ev := Event{Type: EventChat, Data: map[string]interface{}{
		"playerName": p.Name,
		"text":       text,
	}}
	r.mtx.Unlock()

	r.notify(r.id, ev)
	return nil
}

// endRoundLocked is the single round-termination entry point, shared by the
// timer, the host skip, the completion predicate and player removal. It
// settles the submitter bonus, freezes the round into the history and
// schedules the advance to the next phase.
func (r *Room) endRoundLocked(reason string) []Event {
	round := r.current
	if round == nil || !round.Active {
		return nil
	}

	r.stopTimerLocked()

	eligible := 0
	for id := range r.players {
		if id != round.SubmitterID {
			eligible++
		}
	}
	subDelta := submitterDelta(len(round.CorrectOrder), eligible)
	if submitter, ok := r.players[round.SubmitterID]; ok {
		submitter.Score += subDelta
	}

	round.Active = false
	round.EndedAt = time.Now()
	r.history = append(r.history, *round)
	r.current = nil
	r.submitterID, r.submitterName = "", ""
	r.status = StatusRoundEnd
	r.gen++

	scores := make(map[string]int, len(r.players))
	for _, p := range r.players {
		scores[p.Name] = p.Score
	}

	evs := []Event{
		{Type: EventAnswerReveal, Data: map[string]interface{}{
			"song":         round.Song,
			"correctOrder": round.CorrectOrder,
		}},
		{Type: EventRoundEnded, Data: RoundEndView{
			RoundNumber:    round.Number,
			Song:           round.Song,
			Reason:         reason,
			CorrectOrder:   round.CorrectOrder,
			SubmitterName:  round.SubmitterName,
			SubmitterDelta: subDelta,
			Scores:         scores,
			RoundsPlayed:   len(r.history),
			MaxRounds:      r.settings.MaxRounds,
		}},
	}

	gen := r.gen
	time.AfterFunc(r.roundEndDelay, func() { r.advance(gen) })

	r.logger.Infof("round %d ended (%s)", round.Number, reason)
	return evs
}

// advance moves round_end on to the next submitter or to game end once the
// display delay has passed. A stale generation means the room was dissolved
// or reset meanwhile.
func (r *Room) advance(gen uint64) {
	r.mtx.Lock()
	if r.destroyed || r.gen != gen || r.status != StatusRoundEnd {
		r.mtx.Unlock()
		return
	}

	var evs []Event
	if len(r.history) >= r.settings.MaxRounds {
		evs = r.finishGameLocked()
	} else {
		r.status = StatusWaitingSubmitter
		evs = []Event{{Type: EventNeedsSubmitter, Data: map[string]interface{}{
			"roundNumber": len(r.history) + 1,
		}}}
	}
	r.mtx.Unlock()

	r.notify(r.id, evs...)
}

// finishGameLocked settles the winner, reports to the stats sink and
// schedules the return to waiting.
func (r *Room) finishGameLocked() []Event {
	r.status = StatusGameEnd
	r.gen++

	results := make([]PlayerResult, 0, len(r.players))
	var winner string
	best := 0
	for _, id := range r.order {
		p := r.players[id]
		if winner == "" || p.Score > best {
			winner, best = p.Name, p.Score
		}
	}
	for _, id := range r.order {
		p := r.players[id]
		results = append(results, PlayerResult{
			Name:           p.Name,
			Score:          p.Score,
			CorrectGuesses: p.CorrectGuesses,
			TotalGuesses:   p.TotalGuesses,
			SongsSubmitted: p.SongsSubmitted,
			Winner:         p.Name == winner,
		})
	}

	gen := r.gen
	time.AfterFunc(r.gameEndDelay, func() { r.resetAfterGame(gen) })

	r.logger.Infof("game finished, winner %s with %d points", winner, best)
	r.stats.OnGameEnd(results, winner)

	return []Event{{Type: EventGameEnded, Data: map[string]interface{}{
		"results": results,
		"winner":  winner,
		"rounds":  len(r.history),
	}}}
}

// resetAfterGame returns the room to waiting: transient player state clears
// but membership is retained.
func (r *Room) resetAfterGame(gen uint64) {
	r.mtx.Lock()
	if r.destroyed || r.gen != gen || r.status != StatusGameEnd {
		r.mtx.Unlock()
		return
	}

	r.status = StatusWaiting
	r.history = nil
	r.gen++
	for _, p := range r.players {
		p.resetGame()
		p.Ready = p.Host
	}

	ev := Event{Type: EventRoomUpdated, Data: r.snapshotLocked()}
	r.mtx.Unlock()

	r.notify(r.id, ev)
}

// PlayerCount is used by the registry for listings.
func (r *Room) PlayerCount() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.players)
}

// MemberIDs returns the connection ids of every seated player.
func (r *Room) MemberIDs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
