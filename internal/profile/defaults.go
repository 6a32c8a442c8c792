package profile

// denyList covers transitions, camera directions, slugline prefixes, time
// tokens and short function words that show up in caps in screenplays.
var denyList = []string{
	"INT", "EXT", "INT.", "EXT.", "I/E", "I/E.", "INT./EXT.", "EXT./INT.",
	"DAY", "NIGHT", "MORNING", "EVENING", "AFTERNOON", "DAWN", "DUSK",
	"LATER", "CONTINUOUS", "SAME", "MOMENTS", "MOMENTS LATER",
	"CUT", "CUT TO", "CUT TO:", "SMASH CUT", "MATCH CUT", "JUMP CUT", "TIME CUT",
	"FADE", "FADE IN", "FADE IN:", "FADE OUT", "FADE OUT.", "FADE TO", "FADES",
	"DISSOLVE", "DISSOLVE TO", "DISSOLVE TO:", "WIPE", "IRIS",
	"CONTINUED", "CONTINUED:", "CONT'D", "CONT", "(CONT'D)", "MORE", "(MORE)",
	"ANGLE", "ANGLE ON", "CLOSE", "CLOSE ON", "CLOSE UP", "CLOSEUP", "WIDE", "WIDE SHOT",
	"POV", "INSERT", "BACK TO", "BACK", "INTERCUT", "FLASHBACK", "MONTAGE",
	"SERIES OF SHOTS", "SHOT", "PAN", "ZOOM", "TRACKING", "TRACKING SHOT", "OVERHEAD",
	"END", "THE END", "TITLE", "TITLES", "SUPER", "SUPERIMPOSE", "OVER", "BLACK",
	"V.O.", "O.S.", "O.C.", "VO", "OS", "OC",
	"THE", "AND", "A", "AN", "TO", "OF", "IN", "ON", "AT", "BY", "FOR", "WITH",
	"WE", "SEE", "HEAR", "HE", "SHE", "IT", "THEY", "YOU", "I", "ME", "MY",
	"SCENE", "SCENES", "REVISED", "DRAFT", "PAGE", "SCRIPT", "SCREENPLAY", "WRITTEN",
	"FINAL", "SHOOTING", "COPYRIGHT", "OK", "OKAY", "NO", "YES", "HEY", "OH",
	"TV", "FBI", "CIA", "NYPD", "LAPD", "USA", "UK", "NY", "LA",
}

var likelyCharacters = []string{
	"MOM", "DAD", "MOTHER", "FATHER", "SON", "DAUGHTER", "BROTHER", "SISTER",
	"WIFE", "HUSBAND", "GRANDMA", "GRANDPA", "UNCLE", "AUNT", "BABY",
	"DOCTOR", "NURSE", "OFFICER", "COP", "DETECTIVE", "SHERIFF", "DEPUTY", "AGENT",
	"CAPTAIN", "SERGEANT", "LIEUTENANT", "GENERAL", "SOLDIER", "GUARD",
	"WAITER", "WAITRESS", "BARTENDER", "DRIVER", "PILOT", "RECEPTIONIST",
	"BOY", "GIRL", "MAN", "WOMAN", "KID", "TEACHER", "PRIEST", "JUDGE", "LAWYER",
	"PRESIDENT", "NARRATOR", "BOSS", "REPORTER", "STRANGER", "CLERK",
}

var genres = []GenreKeywords{
	{Label: "thriller", Keywords: []string{
		"murder", "kill", "killer", "gun", "police", "detective", "investigate", "suspect",
		"chase", "danger", "secret", "conspiracy", "escape", "threat", "spy", "crime", "evidence",
	}},
	{Label: "horror", Keywords: []string{
		"scream", "screams", "blood", "monster", "ghost", "demon", "dead", "terror", "creature",
		"evil", "nightmare", "haunted", "corpse", "horror", "witch", "zombie",
	}},
	{Label: "comedy", Keywords: []string{
		"laugh", "laughs", "funny", "joke", "silly", "ridiculous", "stupid", "awkward",
		"grins", "giggles", "hilarious", "embarrassed", "dude",
	}},
	{Label: "drama", Keywords: []string{
		"family", "life", "feel", "remember", "mother", "father", "daughter", "cry", "cries",
		"tears", "sorry", "hospital", "truth", "forgive", "funeral",
	}},
	{Label: "action", Keywords: []string{
		"explosion", "explodes", "fight", "punch", "shoot", "crash", "jump", "fire", "attack",
		"battle", "weapon", "helicopter", "bullet", "bullets", "kick", "blast",
	}},
	{Label: "romance", Keywords: []string{
		"love", "kiss", "kisses", "heart", "romantic", "beautiful", "date", "wedding", "marry",
		"together", "darling", "boyfriend", "girlfriend", "passion",
	}},
	{Label: "scifi", Keywords: []string{
		"space", "planet", "alien", "robot", "spaceship", "future", "technology", "laser",
		"galaxy", "orbit", "android", "scientist", "starship", "hologram",
	}},
}

// Default returns the "rescue" profile, tuned for HTML-contaminated and
// structurally collapsed sources.
func Default() Profile {
	return Profile{
		Name:             "rescue",
		Genres:           cloneGenres(genres),
		DenyList:         append([]string(nil), denyList...),
		LikelyCharacters: append([]string(nil), likelyCharacters...),
		Weights: Weights{
			ScenePresence:      0.4,
			Dialogue:           0.3,
			FirstScene:         0.2,
			LastScene:          0.15,
			ConfidenceBase:     0.6,
			GapMultiplier:      2.5,
			SoloGap:            0.4,
			EnsembleThreshold:  0.25,
			EnsembleConfidence: 0.5,
		},
		Cue: CueRules{
			MinNameLen:         2,
			MaxNameLen:         30,
			MinDialogueLen:     5,
			MaxUpperDialogue:   20,
			FrequencyThreshold: 3,
		},
		Limits:         Limits{Characters: 50, Locations: 25, Dialogues: 200, Scenes: 100},
		WordsPerMinute: 250,
		ActionSample:   300,
		DialogueSample: 200,
	}
}

// Direct returns the "direct" profile for sources that already carry
// reasonable line structure. It exports smaller documents.
func Direct() Profile {
	p := Default()
	p.Name = "direct"
	p.Limits = Limits{Characters: 40, Locations: 25, Dialogues: 100, Scenes: 20}
	p.ActionSample = 200
	return p
}

func cloneGenres(in []GenreKeywords) []GenreKeywords {
	out := make([]GenreKeywords, len(in))
	for i, g := range in {
		out[i] = GenreKeywords{Label: g.Label, Keywords: append([]string(nil), g.Keywords...)}
	}
	return out
}
