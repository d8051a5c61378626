package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type StatusResponse struct {
	Settings        GameSettingsDTO `json:"settings"`
	Config          Config          `json:"config"`
	NextPlayer      int             `json:"next_player"`
	Winner          int             `json:"winner"`
	BoardSize       int             `json:"board_size"`
	Status          string          `json:"status"`
	WinningLine     []Move          `json:"winning_line"`
	AiThinking      bool            `json:"ai_thinking"`
	LastAi          *AIMoveResult   `json:"last_ai,omitempty"`
	TurnStartedAtMs int64           `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
	BoardSize   int    `json:"board_size"`
}

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type aiRequest struct {
	Board  [][][]int `json:"board,omitempty"`
	Player int       `json:"player,omitempty"`
	Count  int       `json:"count,omitempty"`
}

type aiMoveResponse struct {
	Move           *Move `json:"move"`
	Evaluation     int   `json:"evaluation"`
	Confidence     int   `json:"confidence"`
	SearchDepth    int   `json:"search_depth"`
	NodesEvaluated int64 `json:"nodes_evaluated"`
	ThinkingTimeMs int64 `json:"thinking_time_ms"`
}

type resetPayload struct {
	NextPlayer      int    `json:"next_player"`
	Winner          int    `json:"winner"`
	Status          string `json:"status"`
	BoardSize       int    `json:"board_size"`
	WinningLine     []Move `json:"winning_line"`
	TurnStartedAtMs int64  `json:"turn_started_at_ms"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

type ttCacheStatusResponse struct {
	Enabled  bool    `json:"enabled"`
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Usage    float64 `json:"usage"`
	Full     bool    `json:"full"`
}

type ttCacheEntryDTO struct {
	Hash        string `json:"hash"`
	Hits        uint32 `json:"hits"`
	Depth       int    `json:"depth"`
	Score       int32  `json:"score"`
	Flag        string `json:"flag"`
	BestMove    Move   `json:"best_move"`
	GenWritten  uint32 `json:"gen_written"`
	GenLastUsed uint32 `json:"gen_last_used"`
}

type ttCacheEntriesResponse struct {
	Items  []ttCacheEntryDTO `json:"items"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
	Total  int               `json:"total"`
}

func main() {
	cfgPath := flag.String("config", "", "optional config file path")
	flag.Parse()

	cfg, err := LoadConfig(*cfgPath)
	if err != nil {
		setupLogging("info")
		log.Fatal().Err(err).Msg("config load failed")
	}
	configStore.Update(cfg)
	setupLogging(cfg.LogLevel)

	var persistOnce sync.Once
	persistOnShutdown := func(reason string) {
		persistOnce.Do(func() {
			log.Info().Str("reason", reason).Msg("persisting transposition table")
			if err := SaveTranspositionTable(GetConfig()); err != nil {
				log.Warn().Err(err).Msg("tt persistence failed")
			}
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Msg("panic recovered in main")
			persistOnShutdown("panic")
		}
	}()

	controller := NewGameController(DefaultGameSettings())
	LoadTranspositionTable(cfg)
	defer persistOnShutdown("exit")
	hub := NewHub()
	ghostHub := NewGhostHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller.SetGhostPublisher(
		func() bool { return ghostHub.HasClients() && GetConfig().GhostMode },
		func(update GhostUpdate) {
			ghostHub.Publish(ghostPayloadFromUpdate(update))
		},
	)

	go hub.Run(ctx.Done())
	go ghostHub.Run(ctx.Done())
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() {
					hub.broadcastBoard <- boardFromController(controller)
					hub.broadcastStatus <- controllerStatus(controller)
					if ghostHub.HasClients() {
						ghostHub.Publish(ghostPayload{Final: true})
					}
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings())
		controller.StartGame(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		settings := controller.Settings()
		controller.Reset(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   *Config          `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Config != nil {
			configStore.Update(*payload.Config)
			controller.ResetForConfigChange()
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			controller.Reset(settings)
		}
		hub.broadcastSettings <- settingsPayload{
			Settings: controllerSettingsDTO(controller.Settings()),
			Config:   GetConfig(),
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		applied, errMsg := controller.ApplyHumanMove(Move{X: payload.X, Y: payload.Y, Z: payload.Z})
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		hub.broadcastBoard <- boardFromController(controller)
		hub.broadcastStatus <- controllerStatus(controller)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/ai/move", func(w http.ResponseWriter, r *http.Request) {
		board, player, ok := boardAndPlayerFromRequest(r, controller)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		result := GetBestMove(board, player, nil, nil)
		response := aiMoveResponse{
			Evaluation:     result.Evaluation,
			Confidence:     result.Confidence,
			SearchDepth:    result.SearchDepth,
			NodesEvaluated: result.NodesEvaluated,
			ThinkingTimeMs: result.ThinkingTimeMs,
		}
		if result.HasMove {
			move := result.Move
			response.Move = &move
		}
		writeJSON(w, http.StatusOK, response)
	})

	r.Post("/api/ai/suggest", func(w http.ResponseWriter, r *http.Request) {
		var payload aiRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		board, player, ok := boardAndPlayerFromPayload(payload, controller)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid board"})
			return
		}
		count := payload.Count
		if count <= 0 {
			count = 5
		}
		if count > 20 {
			count = 20
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"suggestions": GetSuggestedMoves(board, player, count),
		})
	})

	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ttCacheStatus())
	})
	r.Delete("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		FlushSearchTT()
		writeJSON(w, http.StatusOK, map[string]any{
			"cleared": true,
		})
	})
	r.Get("/api/cache/tt/entries", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}
		writeJSON(w, http.StatusOK, ttCacheEntries(offset, limit))
	})
	r.Delete("/api/cache/tt/entries/{hash}", func(w http.ResponseWriter, r *http.Request) {
		hashRaw := chi.URLParam(r, "hash")
		hash, err := parseTTKey(hashRaw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hash"})
			return
		}
		config := GetConfig()
		if !config.AiEnableTT {
			writeJSON(w, http.StatusOK, map[string]any{"deleted": false, "hash": fmt.Sprintf("0x%016x", hash)})
			return
		}
		tt := ensureSearchTT(config)
		deleted := tt.DeleteByKey(hash)
		writeJSON(w, http.StatusOK, map[string]any{
			"deleted": deleted,
			"hash":    fmt.Sprintf("0x%016x", hash),
		})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})
	r.Get("/ws/ghost", func(w http.ResponseWriter, r *http.Request) {
		serveGhostWS(ghostHub, w, r)
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", cfg.ServerAddr).Msg("backend listening")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Warn().Err(closeErr).Msg("forced close failed")
		}
	}

	cancel()
	persistOnShutdown("shutdown")
	if runErr != nil {
		log.Error().Err(runErr).Msg("exiting after server error")
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	status := controllerStatus(controller)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})
	client.sendJSON(wsMessage{Type: "board", Payload: mustMarshal(boardFromController(controller))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			status := controllerStatus(controller)
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})
		case "request_board":
			client.sendJSON(wsMessage{Type: "board", Payload: mustMarshal(boardFromController(controller))})
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	response := StatusResponse{
		Settings:        controllerSettingsDTO(controller.Settings()),
		Config:          GetConfig(),
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		BoardSize:       state.Board.Size(),
		Status:          statusToString(state.Status),
		WinningLine:     append([]Move(nil), state.WinningLine...),
		AiThinking:      controller.AiThinking(),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
	if result, ok := controller.LastAIResult(); ok {
		response.LastAi = &result
	}
	return response
}

func boardFromController(controller *GameController) boardPayload {
	state := controller.State()
	return boardPayload{
		Board:      boardToSlice(state.Board),
		NextPlayer: playerToInt(state.ToMove),
		Winner:     winnerFromStatus(state.Status),
		MoveCount:  state.Board.CountStones(),
		Status:     statusToString(state.Status),
		AiThinking: controller.AiThinking(),
	}
}

func boardAndPlayerFromRequest(r *http.Request, controller *GameController) (Board, PlayerColor, bool) {
	var payload aiRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return Board{}, PlayerBlack, false
	}
	return boardAndPlayerFromPayload(payload, controller)
}

func boardAndPlayerFromPayload(payload aiRequest, controller *GameController) (Board, PlayerColor, bool) {
	if payload.Board == nil {
		state := controller.State()
		player := state.ToMove
		if payload.Player != 0 {
			player = intToPlayer(payload.Player)
		}
		return state.Board, player, true
	}
	board, ok := boardFromSlice(payload.Board)
	if !ok {
		return Board{}, PlayerBlack, false
	}
	return board, intToPlayer(payload.Player), true
}

// settingsFromDTO maps the wire settings onto base. The board side is
// not settable over the API and keeps the base value.
func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.BlackType = PlayerAI
		settings.WhiteType = PlayerAI
	case "human_vs_human":
		settings.BlackType = PlayerHuman
		settings.WhiteType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 2 {
			settings.BlackType = PlayerAI
			settings.WhiteType = PlayerHuman
		} else {
			settings.BlackType = PlayerHuman
			settings.WhiteType = PlayerAI
		}
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	if settings.BlackType == PlayerAI && settings.WhiteType == PlayerAI {
		mode = "ai_vs_ai"
	} else if settings.BlackType == PlayerHuman && settings.WhiteType == PlayerHuman {
		mode = "human_vs_human"
	}
	humanPlayer := 0
	if settings.BlackType == PlayerHuman && settings.WhiteType != PlayerHuman {
		humanPlayer = 1
	} else if settings.WhiteType == PlayerHuman && settings.BlackType != PlayerHuman {
		humanPlayer = 2
	} else if settings.BlackType == PlayerHuman && settings.WhiteType == PlayerHuman {
		humanPlayer = 1
	}
	return GameSettingsDTO{Mode: mode, HumanPlayer: humanPlayer, BoardSize: settings.BoardSize}
}

func boardToSlice(board Board) [][][]int {
	size := board.Size()
	layers := make([][][]int, size)
	for z := 0; z < size; z++ {
		layers[z] = make([][]int, size)
		for y := 0; y < size; y++ {
			layers[z][y] = make([]int, size)
			for x := 0; x < size; x++ {
				layers[z][y][x] = cellToInt(board.At(x, y, z))
			}
		}
	}
	return layers
}

func boardFromSlice(layers [][][]int) (Board, bool) {
	size := len(layers)
	if size == 0 {
		return Board{}, false
	}
	board := NewBoard(size)
	for z := 0; z < size; z++ {
		if len(layers[z]) != size {
			return Board{}, false
		}
		for y := 0; y < size; y++ {
			if len(layers[z][y]) != size {
				return Board{}, false
			}
			for x := 0; x < size; x++ {
				board.Set(x, y, z, intToCell(layers[z][y][x]))
			}
		}
	}
	return board, true
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellBlack:
		return 1
	case CellWhite:
		return 2
	default:
		return 0
	}
}

func intToCell(value int) Cell {
	switch value {
	case 1:
		return CellBlack
	case 2:
		return CellWhite
	default:
		return CellEmpty
	}
}

func playerToInt(player PlayerColor) int {
	if player == PlayerBlack {
		return 1
	}
	return 2
}

func intToPlayer(value int) PlayerColor {
	if value == 2 {
		return PlayerWhite
	}
	return PlayerBlack
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func ttCacheStatus() ttCacheStatusResponse {
	config := GetConfig()
	if !config.AiEnableTT {
		return ttCacheStatusResponse{Enabled: false}
	}
	tt := ensureSearchTT(config)
	count := tt.Count()
	capacity := tt.Capacity()
	usage := 0.0
	full := false
	if capacity > 0 {
		usage = float64(count) / float64(capacity)
		full = count >= capacity
	}
	return ttCacheStatusResponse{
		Enabled:  true,
		Count:    count,
		Capacity: capacity,
		Usage:    usage,
		Full:     full,
	}
}

func ttCacheEntries(offset int, limit int) ttCacheEntriesResponse {
	config := GetConfig()
	if !config.AiEnableTT {
		return ttCacheEntriesResponse{
			Items:  []ttCacheEntryDTO{},
			Offset: offset,
			Limit:  limit,
			Total:  0,
		}
	}
	tt := ensureSearchTT(config)
	entries, total := tt.TopEntriesByHits(offset, limit)
	items := make([]ttCacheEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ttEntryToDTO(entry))
	}
	return ttCacheEntriesResponse{
		Items:  items,
		Offset: offset,
		Limit:  limit,
		Total:  total,
	}
}

func ttEntryToDTO(entry TTEntry) ttCacheEntryDTO {
	return ttCacheEntryDTO{
		Hash:        fmt.Sprintf("0x%016x", entry.Key),
		Hits:        entry.Hits,
		Depth:       entry.Depth,
		Score:       entry.Score,
		Flag:        ttFlagString(entry.Flag),
		BestMove:    entry.BestMove,
		GenWritten:  entry.GenWritten,
		GenLastUsed: entry.GenLastUsed,
	}
}

func ttFlagString(flag TTFlag) string {
	switch flag {
	case TTExact:
		return "EXACT"
	case TTLower:
		return "LOWER"
	case TTUpper:
		return "UPPER"
	default:
		return "UNKNOWN"
	}
}

func parseTTKey(raw string) (uint64, error) {
	if raw == "" {
		return 0, errors.New("empty")
	}
	return strconv.ParseUint(raw, 0, 64)
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	return resetPayload{
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		Status:          statusToString(state.Status),
		BoardSize:       state.Board.Size(),
		WinningLine:     append([]Move(nil), state.WinningLine...),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
