package cast

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

func find(r Result, name string) *screenplay.CharacterStats {
	if i, ok := r.Index()[Key(name)]; ok {
		return &r.Characters[i]
	}
	return nil
}

func TestExtract_KitchenScenario(t *testing.T) {
	text := "INT. KITCHEN - DAY\nJOHN\nHello there, how are you today?\nMARY\nI'm fine thanks for asking."
	r := Extract(text, profile.Default())

	if len(r.Characters) != 2 {
		t.Fatalf("expected 2 characters, got %d: %+v", len(r.Characters), r.Characters)
	}
	for _, name := range []string{"JOHN", "MARY"} {
		c := find(r, name)
		if c == nil {
			t.Fatalf("missing %s", name)
		}
		if c.DialogueLines < 1 {
			t.Errorf("%s: expected dialogue lines, got %d", name, c.DialogueLines)
		}
		if c.DetectedByFrequency {
			t.Errorf("%s should not be frequency-only", name)
		}
	}

	if len(r.Dialogues) != 2 {
		t.Fatalf("expected 2 dialogue lines, got %d", len(r.Dialogues))
	}
	if r.Dialogues[0].Text != "Hello there, how are you today?" {
		t.Errorf("first dialogue = %q", r.Dialogues[0].Text)
	}
	if r.Dialogues[1].Text != "I'm fine thanks for asking." {
		t.Errorf("second dialogue = %q", r.Dialogues[1].Text)
	}
	if r.Dialogues[0].Offset != strings.Index(text, "JOHN") {
		t.Errorf("offset = %d", r.Dialogues[0].Offset)
	}
}

func TestExtract_Parenthetical(t *testing.T) {
	r := Extract("SARAH (whispering) Get down, now.", profile.Default())
	if len(r.Dialogues) != 1 {
		t.Fatalf("expected 1 dialogue, got %d", len(r.Dialogues))
	}
	d := r.Dialogues[0]
	if d.Character != "SARAH" || d.Parenthetical != "whispering" || d.Text != "Get down, now." {
		t.Errorf("unexpected dialogue %+v", d)
	}
}

func TestExtract_CollapsedText(t *testing.T) {
	text := "INT. BAR - NIGHT Sam wipes the counter. SAM Another round? RITA No thanks, I'm driving tonight."
	r := Extract(text, profile.Default())
	if len(r.Dialogues) != 2 {
		t.Fatalf("expected 2 dialogues, got %d: %+v", len(r.Dialogues), r.Dialogues)
	}
	if r.Dialogues[0].Character != "SAM" || r.Dialogues[0].Text != "Another round?" {
		t.Errorf("first = %+v", r.Dialogues[0])
	}
	if r.Dialogues[1].Character != "RITA" {
		t.Errorf("second = %+v", r.Dialogues[1])
	}
}

func TestExtract_DenyListNeverSurfaces(t *testing.T) {
	p := profile.Default()
	text := strings.Repeat("CUT TO: INT. HOUSE - NIGHT\nFADE Out we go into the dark. CONTINUED Here again it is. ", 5) +
		"ANGLE ON the door. THE END"
	r := Extract(text, p)
	for _, c := range r.Characters {
		if p.Denied(strings.Fields(c.Name)[0]) {
			t.Errorf("denied word surfaced as character: %q", c.Name)
		}
	}
	for _, d := range r.Dialogues {
		if p.Denied(strings.Fields(d.Character)[0]) {
			t.Errorf("denied word surfaced as speaker: %q", d.Character)
		}
	}
}

func TestExtract_CapsRuns(t *testing.T) {
	r := Extract("JOHN Get out of here, NOW.", profile.Default())
	if len(r.Dialogues) != 1 || r.Dialogues[0].Text != "Get out of here, NOW." {
		t.Fatalf("mixed-case dialogue should be kept, got %+v", r.Dialogues)
	}

	r = Extract("JOHN A LONG SHOUTED LINE THAT IS ALL CAPS", profile.Default())
	if len(r.Dialogues) != 0 {
		t.Errorf("all-caps run should not become dialogue, got %+v", r.Dialogues)
	}
}

func TestExtract_ShortDialogueRejected(t *testing.T) {
	r := Extract("JOHN Hi", profile.Default())
	if len(r.Dialogues) != 0 {
		t.Errorf("expected short dialogue dropped, got %+v", r.Dialogues)
	}
}

func TestExtract_FrequencyFallback(t *testing.T) {
	text := "WALTER walks in. The room is quiet. WALTER sits down. Later WALTER leaves. The NURSE checks a chart."
	r := Extract(text, profile.Default())

	w := find(r, "WALTER")
	if w == nil {
		t.Fatal("expected WALTER from frequency")
	}
	if !w.DetectedByFrequency {
		t.Error("WALTER should be frequency-only")
	}
	if w.DialogueLines != 0 {
		t.Errorf("frequency-only character should have no dialogue, got %d", w.DialogueLines)
	}

	if find(r, "NURSE") == nil {
		t.Error("expected likely-character NURSE registered on a single mention")
	}
}

func TestExtract_FrequencyWordOfCueNameDropped(t *testing.T) {
	text := "MARY JANE Where did everyone go tonight? MARY JANE I keep asking. MARY JANE Answer me please."
	r := Extract(text, profile.Default())
	if find(r, "MARY JANE") == nil {
		t.Fatal("expected MARY JANE")
	}
	if find(r, "MARY") != nil || find(r, "JANE") != nil {
		t.Errorf("name fragments should not register: %+v", r.Characters)
	}
}

func TestExtract_MergeAccumulates(t *testing.T) {
	text := "JOHN Hello there, how are you today? JOHN Fine weather for it."
	r := Extract(text, profile.Default())
	c := find(r, "JOHN")
	if c == nil {
		t.Fatal("missing JOHN")
	}
	// two cue segments plus two sentence hits
	if c.DialogueLines != 4 {
		t.Errorf("dialogue lines = %d, want 4", c.DialogueLines)
	}
	if len(c.Strategies) != 2 || c.Strategies[0] != screenplay.StrategyCue || c.Strategies[1] != screenplay.StrategySpecific {
		t.Errorf("strategies = %v", c.Strategies)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "INT. LAB - NIGHT\nDR. KANE (V.O.)\nThe samples are gone.\nLENA\nThen someone took them.\nKANE KANE KANE"
	a := Extract(text, profile.Default())
	for i := 0; i < 20; i++ {
		b := Extract(text, profile.Default())
		if len(a.Characters) != len(b.Characters) {
			t.Fatalf("run %d: character count differs", i)
		}
		for j := range a.Characters {
			if a.Characters[j].Name != b.Characters[j].Name || a.Characters[j].DialogueLines != b.Characters[j].DialogueLines {
				t.Fatalf("run %d: characters differ at %d", i, j)
			}
		}
	}
}

func TestExtract_Garbage(t *testing.T) {
	for _, in := range []string{"", "   ", "((((", "A B C D", "#### ####", "\x00\x01"} {
		r := Extract(in, profile.Default())
		if len(r.Dialogues) != 0 {
			t.Errorf("Extract(%q): unexpected dialogue %+v", in, r.Dialogues)
		}
	}
}

func TestValidName(t *testing.T) {
	p := profile.Default()
	tests := []struct {
		name string
		want bool
	}{
		{"JOHN", true},
		{"MR. SMITH", true},
		{"GUARD #2", true},
		{"O'BRIEN", true},
		{"X", false},
		{"CUT TO", false},
		{"FADE", false},
		{"THE STRANGER", false},
		{"R2-D2", false},
		{"BRK", false},
		{"A VERY LONG NAME THAT GOES ON AND ON", false},
		{"SMASH CUT TO", false},
		{"ANGLE ON JOHN", false},
		{"JOHN V.O.", true},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name, &p); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExtract_HeadingTokensNotCounted(t *testing.T) {
	text := strings.Repeat("INT. WAREHOUSE - NIGHT\nRain drums on the roof.\n", 4)
	r := Extract(text, profile.Default())
	if c := find(r, "WAREHOUSE"); c != nil {
		t.Errorf("location registered as character: %+v", c)
	}
}

func TestExtract_ExtensionsShareIdentity(t *testing.T) {
	text := "JOHN V.O.\nWe never should have come here.\nJOHN\nKeep walking and don't look back."
	r := Extract(text, profile.Default())
	if len(r.Characters) != 1 || r.Characters[0].Name != "JOHN" {
		t.Fatalf("characters = %+v", r.Characters)
	}
	if r.Characters[0].DialogueLines != 4 {
		t.Errorf("dialogue lines = %d, want 4", r.Characters[0].DialogueLines)
	}
	for _, d := range r.Dialogues {
		if d.Character != "JOHN" {
			t.Errorf("speaker = %q, want JOHN", d.Character)
		}
	}
	if got := Key("john  cont'd"); got != "JOHN" {
		t.Errorf("Key = %q, want JOHN", got)
	}
}

func TestExtract_DeniedLeadingPhrase(t *testing.T) {
	r := Extract("SMASH CUT TO Black smoke fills the room.", profile.Default())
	for _, c := range r.Characters {
		if strings.HasPrefix(c.Name, "SMASH") {
			t.Errorf("transition registered as character: %q", c.Name)
		}
	}
	if len(r.Dialogues) != 0 {
		t.Errorf("unexpected dialogue %+v", r.Dialogues)
	}
}
