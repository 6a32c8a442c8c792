package screenplay

// Unknown is used for any slugline field the parser could not recover.
const Unknown = "UNKNOWN"

// IntExt classifies a scene as interior, exterior, or unknown.
type IntExt string

const (
	Interior    IntExt = "INT"
	Exterior    IntExt = "EXT"
	IntExtUnset IntExt = Unknown
)

// Confidence is a coarse trust label for the recovered structure.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Strategy names which character-detection pass found a name.
type Strategy string

const (
	StrategyCue       Strategy = "cue"
	StrategySpecific  Strategy = "specific"
	StrategyFrequency Strategy = "frequency"
)

// RawScript is the loader's record for one scraped screenplay. Either Text or
// Scenes is populated; Scenes is the pre-segmented-but-broken shape.
type RawScript struct {
	Slug   string           `json:"slug"`
	Title  string           `json:"title,omitempty"`
	Source string           `json:"source,omitempty"`
	Format string           `json:"format,omitempty"`
	Text   string           `json:"text,omitempty"`
	Scenes []SegmentedScene `json:"scenes,omitempty"`
}

// SegmentedScene is one scene of a pre-segmented RawScript.
type SegmentedScene struct {
	Slugline      string   `json:"slugline,omitempty"`
	ActionText    string   `json:"action_text,omitempty"`
	Characters    []string `json:"characters,omitempty"`
	DialogueCount int      `json:"dialogue_count,omitempty"`
	WordCount     int      `json:"word_count,omitempty"`
}

// SceneCandidate is a span of text bounded by successive slugline matches.
// Start and End are byte offsets of the whole span, slugline included;
// Content is the text after the slugline.
type SceneCandidate struct {
	Index     int
	Slugline  string
	IntExt    IntExt
	Location  string
	Time      string
	Start     int
	End       int
	Content   string
	WordCount int
}

// CharacterStats accumulates everything known about one character.
type CharacterStats struct {
	Name                string
	Strategies          []Strategy
	DialogueLines       int
	TotalWords          int
	Scenes              []int
	DetectedByFrequency bool
}

// DialogueLine is one detected utterance. Offset is the byte position of the
// utterance in the normalized text and ties it to a scene span.
type DialogueLine struct {
	Character     string `json:"character"`
	Parenthetical string `json:"parenthetical,omitempty"`
	Text          string `json:"text"`
	Offset        int    `json:"-"`
	Words         int    `json:"-"`
}

// Scene is an assembled scene as exported.
type Scene struct {
	Number        int      `json:"number"`
	Slugline      string   `json:"slugline"`
	IntExt        IntExt   `json:"int_ext"`
	Location      string   `json:"location"`
	Time          string   `json:"time"`
	Characters    []string `json:"characters"`
	DialogueCount int      `json:"dialogue_count"`
	WordCount     int      `json:"word_count"`
	ActionSample  string   `json:"action_sample"`
}

// Metrics are whole-document aggregates.
type Metrics struct {
	TotalScenes      int     `json:"total_scenes"`
	TotalWords       int     `json:"total_words"`
	EstimatedPages   int     `json:"estimated_pages"`
	EstimatedRuntime int     `json:"estimated_runtime"`
	IntCount         int     `json:"int_count"`
	ExtCount         int     `json:"ext_count"`
	IntRatio         float64 `json:"int_ratio"`
	DayCount         int     `json:"day_count"`
	NightCount       int     `json:"night_count"`
	NightRatio       float64 `json:"night_ratio"`
	UniqueCharacters int     `json:"unique_characters"`
	UniqueLocations  int     `json:"unique_locations"`
	DialogueCount    int     `json:"dialogue_count"`
	DialogueWords    int     `json:"dialogue_words"`
	DialogueRatio    float64 `json:"dialogue_ratio"`
}

// GenreResult is the outcome of keyword genre scoring.
type GenreResult struct {
	Primary   string         `json:"primary"`
	Secondary string         `json:"secondary,omitempty"`
	Scores    map[string]int `json:"scores"`
}

// Protagonist is the inferred lead character.
type Protagonist struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	IsEnsemble bool    `json:"is_ensemble"`
	RunnerUp   string  `json:"runner_up,omitempty"`
}

// Structure holds act boundaries as scene indexes.
type Structure struct {
	Act1End  int `json:"act1_end"`
	Midpoint int `json:"midpoint"`
	Act2End  int `json:"act2_end"`
	Climax   int `json:"climax"`
}

// Quality summarizes how much structure was recovered.
type Quality struct {
	Confidence      Confidence `json:"confidence"`
	Score           int        `json:"score"`
	CharactersFound int        `json:"characters_found"`
	DialoguesFound  int        `json:"dialogues_found"`
	ScenesFound     int        `json:"scenes_found"`
	SluglinesFound  bool       `json:"sluglines_found"`
}

// CharacterEntry is an exported character row.
type CharacterEntry struct {
	Name                string `json:"name"`
	ScenesPresent       int    `json:"scenes_present"`
	DialogueLines       int    `json:"dialogue_lines"`
	TotalWords          int    `json:"total_words"`
	DetectedByFrequency bool   `json:"detected_by_frequency,omitempty"`
}

// LocationEntry is an exported location row.
type LocationEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ParsedDocument is the terminal, exported record for one screenplay.
type ParsedDocument struct {
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Year            int              `json:"year,omitempty"`
	Format          string           `json:"format,omitempty"`
	Source          string           `json:"source,omitempty"`
	Profile         string           `json:"profile"`
	ParserVersion   string           `json:"parser_version"`
	Genre           GenreResult      `json:"genre"`
	Metrics         Metrics          `json:"metrics"`
	Structure       Structure        `json:"structure"`
	Protagonist     *Protagonist     `json:"protagonist"`
	Characters      []CharacterEntry `json:"characters"`
	Locations       []LocationEntry  `json:"locations"`
	DialoguesSample []DialogueLine   `json:"dialogues_sample"`
	Scenes          []Scene          `json:"scenes"`
	Quality         Quality          `json:"quality"`
}
