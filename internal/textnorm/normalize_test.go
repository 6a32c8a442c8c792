package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n\n  \n", ""},
		{"plain text untouched", "INT. KITCHEN - DAY", "INT. KITCHEN - DAY"},
		{"br becomes newline", "JOHN<br>Hello there.<br/>MARY", "JOHN\nHello there.\nMARY"},
		{"paragraph end becomes newline", "<p>FADE IN:</p><p>INT. HOUSE - NIGHT</p>", "FADE IN:\n\nINT. HOUSE - NIGHT"},
		{"entities decoded", "Tom &amp; Jerry&nbsp;&nbsp;say &quot;hi&quot; &#39;twice&#39;", "Tom & Jerry say \"hi\" 'twice'"},
		{"horizontal runs collapsed", "JOHN   \t  (quietly)    Hello", "JOHN (quietly) Hello"},
		{"lines trimmed", "   JOHN   \n   Hello.   ", "JOHN\nHello."},
		{"newline runs capped", "A\n\n\n\n\nB", "A\n\nB"},
		{"crlf", "A\r\nB\rC", "A\nB\nC"},
		{"script dropped", "<script>var x = 1;</script>JOHN", "JOHN"},
		{"style dropped", "<style>p { color: red }</style><b>MARY</b>", "MARY"},
		{"invalid utf8 dropped", "JO\xffHN", "JOHN"},
		{"control chars dropped", "JO\x00HN\x07", "JOHN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "<pre>INT. KITCHEN - DAY\n\n\n\nJOHN\n  Hello there.</pre>"
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Errorf("Normalize not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalize_Garbage(t *testing.T) {
	inputs := []string{"<", ">", "<<<>>>", "&", "&#;", "<a href=", "\x00\x01\x02", "<p", "</>"}
	for _, in := range inputs {
		_ = Normalize(in)
	}
}
