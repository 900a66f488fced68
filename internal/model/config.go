package model

import "time"

// Config holds all quotelens settings
type Config struct {
	Corpus        CorpusConfig        `yaml:"corpus"`
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base"`
	Store         StoreConfig         `yaml:"store"`
	Classifier    ClassifierConfig    `yaml:"classifier"`
	Cache         CacheConfig         `yaml:"cache"`
	Resolve       ResolveConfig       `yaml:"resolve"`
	Regions       map[string][]string `yaml:"regions"` // region -> nationality labels
	Output        OutputConfig        `yaml:"output"`
	Download      DownloadConfig      `yaml:"download"`
}

// CorpusConfig controls the corpus filter
type CorpusConfig struct {
	Dir       string   `yaml:"dir"`
	Pattern   string   `yaml:"pattern"`    // File name pattern, {year} is substituted
	BatchSize int      `yaml:"batch_size"` // Lines held in memory at once
	Years     []int    `yaml:"years"`
	Keywords  []string `yaml:"keywords"` // Regex alternatives, matched case-insensitively
}

// KnowledgeBaseConfig locates the entity and label tables
type KnowledgeBaseConfig struct {
	Entities string `yaml:"entities"` // JSON lines, one entity per line
	Labels   string `yaml:"labels"`   // Delimited text with QID,Label columns
}

// StoreConfig locates the artifact database
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ClassifierConfig selects the sentiment classifier
type ClassifierConfig struct {
	Provider          string  `yaml:"provider"` // lexicon, openai, anthropic, ollama
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key,omitempty"`
	BaseURL           string  `yaml:"base_url,omitempty"`
	Timeout           int     `yaml:"timeout"` // seconds
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty"`
	NoProxy           string  `yaml:"no_proxy,omitempty"` // Comma-separated hosts that bypass the proxy
}

// CacheConfig controls the classification cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ResolveConfig controls attribute resolution failure handling
type ResolveConfig struct {
	StrictLabels bool `yaml:"strict_labels"` // Fail when an attribute ID has no label
	StrictDates  bool `yaml:"strict_dates"`  // Fail on unparseable birth dates
}

// OutputConfig controls rendering
type OutputConfig struct {
	Dir            string   `yaml:"dir"`
	Formats        []string `yaml:"formats"` // csv, json, html
	TopN           int      `yaml:"top_n"`
	Words          int      `yaml:"words"`           // Word-cloud size
	PartyCountry   string   `yaml:"party_country"`   // Nationality whose parties are charted
	PartyThreshold float64  `yaml:"party_threshold"` // Minimum speaker share for a party slice
	Verbose        bool     `yaml:"verbose"`
}

// DownloadConfig controls dataset downloads
type DownloadConfig struct {
	Dir       string   `yaml:"dir"`
	Sources   []string `yaml:"sources,omitempty"` // URLs fetched when none are given
	Timeout   int      `yaml:"timeout"`           // seconds
	UserAgent string   `yaml:"user_agent"`
	MaxBytes  int64    `yaml:"max_bytes"`
}

// DefaultKeywords are the climate-related patterns used when none are configured
var DefaultKeywords = []string{
	"climate change",
	"global warming",
	"climate crisis",
	"greenhouse gas",
	"carbon emission",
	"climate emergency",
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir:       "data/quotebank",
			Pattern:   "quotes-{year}.json.bz2",
			BatchSize: 100000,
			Years:     []int{2017, 2018, 2019, 2020},
			Keywords:  append([]string(nil), DefaultKeywords...),
		},
		KnowledgeBase: KnowledgeBaseConfig{
			Entities: "data/speaker_attributes.jsonl.gz",
			Labels:   "data/wikidata_labels_descriptions_quotebank.csv",
		},
		Store: StoreConfig{
			Path: "data/quotelens.db",
		},
		Classifier: ClassifierConfig{
			Provider:          "lexicon",
			Timeout:           30,
			Workers:           4,
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".quotelens-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Regions: map[string][]string{
			"europe": {
				"United Kingdom", "Germany", "France", "Italy", "Spain", "Netherlands",
				"Belgium", "Sweden", "Norway", "Denmark", "Finland", "Ireland",
				"Austria", "Switzerland", "Poland", "Portugal", "Greece",
			},
			"us": {"United States of America"},
		},
		Output: OutputConfig{
			Dir:            "plots",
			Formats:        []string{"csv", "json", "html"},
			TopN:           10,
			Words:          50,
			PartyCountry:   "United States of America",
			PartyThreshold: 0.05,
		},
		Download: DownloadConfig{
			Dir:       "data",
			Timeout:   600,
			UserAgent: "quotelens/1.0",
			MaxBytes:  8 << 30,
		},
	}
}
