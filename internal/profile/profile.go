package profile

import (
	"errors"
	"fmt"
	"strings"
)

// GenreKeywords is one genre label with its keyword list. Genres are kept in
// a slice because their order is the tie-break order for scoring.
type GenreKeywords struct {
	Label    string   `yaml:"label" toml:"label" json:"label"`
	Keywords []string `yaml:"keywords" toml:"keywords" json:"keywords"`
}

// Weights are the protagonist scoring constants. They are empirical and kept
// configurable rather than hard-coded.
type Weights struct {
	ScenePresence      float64 `yaml:"scene_presence" toml:"scene_presence" json:"scene_presence"`
	Dialogue           float64 `yaml:"dialogue" toml:"dialogue" json:"dialogue"`
	FirstScene         float64 `yaml:"first_scene" toml:"first_scene" json:"first_scene"`
	LastScene          float64 `yaml:"last_scene" toml:"last_scene" json:"last_scene"`
	ConfidenceBase     float64 `yaml:"confidence_base" toml:"confidence_base" json:"confidence_base"`
	GapMultiplier      float64 `yaml:"gap_multiplier" toml:"gap_multiplier" json:"gap_multiplier"`
	SoloGap            float64 `yaml:"solo_gap" toml:"solo_gap" json:"solo_gap"`
	EnsembleThreshold  float64 `yaml:"ensemble_threshold" toml:"ensemble_threshold" json:"ensemble_threshold"`
	EnsembleConfidence float64 `yaml:"ensemble_confidence" toml:"ensemble_confidence" json:"ensemble_confidence"`
}

// CueRules bound what the character-cue strategies accept.
type CueRules struct {
	MinNameLen         int `yaml:"min_name_len" toml:"min_name_len" json:"min_name_len"`
	MaxNameLen         int `yaml:"max_name_len" toml:"max_name_len" json:"max_name_len"`
	MinDialogueLen     int `yaml:"min_dialogue_len" toml:"min_dialogue_len" json:"min_dialogue_len"`
	MaxUpperDialogue   int `yaml:"max_upper_dialogue" toml:"max_upper_dialogue" json:"max_upper_dialogue"`
	FrequencyThreshold int `yaml:"frequency_threshold" toml:"frequency_threshold" json:"frequency_threshold"`
}

// Limits bound the list sizes of an exported document.
type Limits struct {
	Characters int `yaml:"characters" toml:"characters" json:"characters"`
	Locations  int `yaml:"locations" toml:"locations" json:"locations"`
	Dialogues  int `yaml:"dialogues" toml:"dialogues" json:"dialogues"`
	Scenes     int `yaml:"scenes" toml:"scenes" json:"scenes"`
}

// Profile is a complete set of heuristics for one parser run.
type Profile struct {
	Name             string          `yaml:"name" toml:"name" json:"name"`
	Genres           []GenreKeywords `yaml:"genres" toml:"genres" json:"genres"`
	DenyList         []string        `yaml:"deny_list" toml:"deny_list" json:"deny_list"`
	LikelyCharacters []string        `yaml:"likely_characters" toml:"likely_characters" json:"likely_characters"`
	Weights          Weights         `yaml:"weights" toml:"weights" json:"weights"`
	Cue              CueRules        `yaml:"cue" toml:"cue" json:"cue"`
	Limits           Limits          `yaml:"limits" toml:"limits" json:"limits"`
	WordsPerMinute   int             `yaml:"words_per_minute" toml:"words_per_minute" json:"words_per_minute"`
	ActionSample     int             `yaml:"action_sample" toml:"action_sample" json:"action_sample"`
	DialogueSample   int             `yaml:"dialogue_sample" toml:"dialogue_sample" json:"dialogue_sample"`

	deny   map[string]struct{}
	likely map[string]struct{}
}

// Denied reports whether word is in the deny vocabulary, ignoring case.
func (p *Profile) Denied(word string) bool {
	if p.deny == nil {
		p.deny = toSet(p.DenyList)
	}
	_, ok := p.deny[strings.ToUpper(strings.TrimSpace(word))]
	return ok
}

// Likely reports whether word is in the curated likely-character vocabulary.
func (p *Profile) Likely(word string) bool {
	if p.likely == nil {
		p.likely = toSet(p.LikelyCharacters)
	}
	_, ok := p.likely[strings.ToUpper(strings.TrimSpace(word))]
	return ok
}

// Validate checks that the profile is usable.
func (p Profile) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(p.Genres) == 0 {
		errs = append(errs, errors.New("at least one genre is required"))
	}
	for _, g := range p.Genres {
		if g.Label == "" {
			errs = append(errs, errors.New("genre label is required"))
		}
	}
	for name, w := range map[string]float64{
		"scene_presence":      p.Weights.ScenePresence,
		"dialogue":            p.Weights.Dialogue,
		"first_scene":         p.Weights.FirstScene,
		"last_scene":          p.Weights.LastScene,
		"confidence_base":     p.Weights.ConfidenceBase,
		"solo_gap":            p.Weights.SoloGap,
		"ensemble_threshold":  p.Weights.EnsembleThreshold,
		"ensemble_confidence": p.Weights.EnsembleConfidence,
	} {
		if w < 0 || w > 1 {
			errs = append(errs, fmt.Errorf("weight %s out of range: %g", name, w))
		}
	}
	if p.Limits.Characters <= 0 || p.Limits.Locations <= 0 || p.Limits.Dialogues <= 0 || p.Limits.Scenes <= 0 {
		errs = append(errs, errors.New("limits must be positive"))
	}
	if p.WordsPerMinute <= 0 {
		errs = append(errs, errors.New("words_per_minute must be positive"))
	}
	if p.Cue.MinNameLen > p.Cue.MaxNameLen {
		errs = append(errs, errors.New("cue name length bounds are inverted"))
	}
	return errors.Join(errs...)
}

// Named returns a built-in profile by name.
func Named(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rescue":
		return Default(), nil
	case "direct":
		return Direct(), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
}

// Names lists the built-in profile names.
func Names() []string {
	return []string{"rescue", "direct"}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToUpper(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
