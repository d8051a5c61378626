package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr string `json:"server_addr" mapstructure:"server_addr"`
	LogLevel   string `json:"log_level" mapstructure:"log_level"`
	GhostMode  bool   `json:"ghost_mode" mapstructure:"ghost_mode"`

	AiDifficulty   string `json:"ai_difficulty" mapstructure:"ai_difficulty"`
	AiDepth        int    `json:"ai_depth" mapstructure:"ai_depth"`
	AiTimeBudgetMs int    `json:"ai_time_budget_ms" mapstructure:"ai_time_budget_ms"`

	AiOpeningStones      int  `json:"ai_opening_stones" mapstructure:"ai_opening_stones"`
	AiMidgameStones      int  `json:"ai_midgame_stones" mapstructure:"ai_midgame_stones"`
	AiMaxCandidatesRoot  int  `json:"ai_max_candidates_root" mapstructure:"ai_max_candidates_root"`
	AiMaxCandidatesMid   int  `json:"ai_max_candidates_mid" mapstructure:"ai_max_candidates_mid"`
	AiMaxCandidatesLocal int  `json:"ai_max_candidates_local" mapstructure:"ai_max_candidates_local"`
	AiLocalRadiusMid     int  `json:"ai_local_radius_mid" mapstructure:"ai_local_radius_mid"`
	AiLocalRadiusEndgame int  `json:"ai_local_radius_endgame" mapstructure:"ai_local_radius_endgame"`
	AiEnableKillerMoves  bool `json:"ai_enable_killer_moves" mapstructure:"ai_enable_killer_moves"`
	AiEnableHistoryMoves bool `json:"ai_enable_history_moves" mapstructure:"ai_enable_history_moves"`
	AiHistoryBoost       int  `json:"ai_history_boost" mapstructure:"ai_history_boost"`
	AiEnableTT           bool `json:"ai_enable_tt" mapstructure:"ai_enable_tt"`
	AiTtSize             int  `json:"ai_tt_size" mapstructure:"ai_tt_size"`
	AiTtBuckets          int  `json:"ai_tt_buckets" mapstructure:"ai_tt_buckets"`
	AiEnableParallelRoot bool `json:"ai_enable_parallel_root" mapstructure:"ai_enable_parallel_root"`
	AiGhostThrottleMs    int  `json:"ai_ghost_throttle_ms" mapstructure:"ai_ghost_throttle_ms"`
	AiLogSearchStats     bool `json:"ai_log_search_stats" mapstructure:"ai_log_search_stats"`
	AiMinThinkTimeMs     int  `json:"ai_min_think_time_ms" mapstructure:"ai_min_think_time_ms"`

	TtPersistEnabled bool   `json:"tt_persist_enabled" mapstructure:"tt_persist_enabled"`
	TtPersistPath    string `json:"tt_persist_path" mapstructure:"tt_persist_path"`

	Weights EvalWeights `json:"weights" mapstructure:"weights"`
}

// EvalWeights are the fixed evaluation constants. They live in config so
// tests can pin them, not because they are tuned at runtime.
type EvalWeights struct {
	Win          float64 `json:"win" mapstructure:"win"`
	FourOpen     float64 `json:"four_open" mapstructure:"four_open"`
	FourBlocked  float64 `json:"four_blocked" mapstructure:"four_blocked"`
	ThreeOpen    float64 `json:"three_open" mapstructure:"three_open"`
	ThreeBlocked float64 `json:"three_blocked" mapstructure:"three_blocked"`
	TwoOpen      float64 `json:"two_open" mapstructure:"two_open"`
	TwoBlocked   float64 `json:"two_blocked" mapstructure:"two_blocked"`
	One          float64 `json:"one" mapstructure:"one"`

	OpponentScale float64 `json:"opponent_scale" mapstructure:"opponent_scale"`
	ThreatScale   float64 `json:"threat_scale" mapstructure:"threat_scale"`
	BlockScale    float64 `json:"block_scale" mapstructure:"block_scale"`
	CenterScale   float64 `json:"center_scale" mapstructure:"center_scale"`
	BlockPerStone float64 `json:"block_per_stone" mapstructure:"block_per_stone"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		ServerAddr: ":8080",
		LogLevel:   "info",
		GhostMode:  false,

		AiDifficulty:   "medium",
		AiDepth:        0, // 0 means use the difficulty preset
		AiTimeBudgetMs: 0,

		// Phase thresholds and branching caps (primary speed lever)
		AiOpeningStones:      6,
		AiMidgameStones:      20,
		AiMaxCandidatesRoot:  40,
		AiMaxCandidatesMid:   30,
		AiMaxCandidatesLocal: 15,
		AiLocalRadiusMid:     2,
		AiLocalRadiusEndgame: 1,

		// Move ordering helpers
		AiEnableKillerMoves:  true,
		AiEnableHistoryMoves: true,
		AiHistoryBoost:       16,

		// TT: off keeps the search a plain alpha-beta minimax
		AiEnableTT:  true,
		AiTtSize:    1 << 18,
		AiTtBuckets: 4,

		AiEnableParallelRoot: false,
		AiGhostThrottleMs:    50,
		AiLogSearchStats:     false, // turn ON temporarily to tune; disable later
		AiMinThinkTimeMs:     0,

		TtPersistEnabled: false,
		TtPersistPath:    "",

		Weights: DefaultEvalWeights(),
	}
}

func DefaultEvalWeights() EvalWeights {
	return EvalWeights{
		Win:          1000000.0,
		FourOpen:     50000.0,
		FourBlocked:  5000.0,
		ThreeOpen:    2000.0,
		ThreeBlocked: 200.0,
		TwoOpen:      100.0,
		TwoBlocked:   10.0,
		One:          1.0,

		OpponentScale: 1.1,
		ThreatScale:   2.0,
		BlockScale:    1.5,
		CenterScale:   0.1,
		BlockPerStone: 50.0,
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

// LoadConfig overlays an optional config file and GOMOKU3D_* environment
// variables on top of the defaults.
func LoadConfig(cfgPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GOMOKU3D")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
