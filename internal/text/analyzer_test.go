package text

import (
	"errors"
	"testing"
)

func TestAnalyze_Kana(t *testing.T) {
	a := NewAnalyzer(nil)
	phrases, err := a.Analyze("こんにちは、ボイス？")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(phrases) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(phrases))
	}
	if len(phrases[0].Moras) != 5 || phrases[0].Moras[0].Text != "コ" {
		t.Errorf("hiragana should become katakana moras: %+v", phrases[0].Moras)
	}
	if phrases[0].PauseMora == nil {
		t.Error("、 should add a pause after the first phrase")
	}
	if !phrases[1].IsInterrogative {
		t.Error("？ should mark the last phrase interrogative")
	}
}

func TestAnalyze_LettersAndDigits(t *testing.T) {
	a := NewAnalyzer(nil)
	phrases, err := a.Analyze("text 42")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(phrases) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(phrases))
	}
	// ティー イー エックス ティー
	if got := CreateKana(phrases[:1]); got != "ティーイーエックスティー'" {
		t.Errorf("letter reading: got %q", got)
	}
	// ヨン ニ
	if got := CreateKana(phrases[1:]); got != "ヨンニ'" {
		t.Errorf("digit reading: got %q", got)
	}
}

func TestAnalyze_Han(t *testing.T) {
	a := NewAnalyzer(nil)
	phrases, err := a.Analyze("你好")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(phrases) != 1 {
		t.Fatalf("expected 1 phrase, got %d", len(phrases))
	}
	var got []string
	for _, m := range phrases[0].Moras {
		got = append(got, m.Vowel)
	}
	want := []string{"i", "a", "o"} // ni hao
	if len(got) != len(want) {
		t.Fatalf("vowels: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vowels: got %v, want %v", got, want)
			break
		}
	}
	if phrases[0].Accent != 1 {
		t.Errorf("Han phrases are head-accented, got %d", phrases[0].Accent)
	}
}

func TestAnalyze_LexiconWins(t *testing.T) {
	lex := NewMapLexicon()
	if err := lex.Add(Word{Surface: "VOICEVOX", Pronunciation: "ボイスボックス", Accent: 4}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	a := NewAnalyzer(lex)
	phrases, err := a.Analyze("VOICEVOX")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := CreateKana(phrases); got != "ボイスボ'ックス" {
		t.Errorf("dictionary word: got %q", got)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := NewAnalyzer(nil)
	phrases, err := a.Analyze("")
	if err != nil || len(phrases) != 0 {
		t.Errorf("empty text: got (%v, %v)", phrases, err)
	}
	if _, err := a.Analyze("😀、"); !errors.Is(err, ErrNothingToRead) {
		t.Errorf("unreadable text: expected ErrNothingToRead, got %v", err)
	}
}

func TestSyllableMoras(t *testing.T) {
	tests := []struct {
		syllable string
		want     string
	}{
		{"zhong", "ジョン"},
		{"guo", "グオ"},
		{"si", "ス"},
		{"yi", "イ"},
		{"wu", "ウ"},
		{"lv", "ル"},
		{"xiang", "シアン"},
	}
	for _, tt := range tests {
		var got string
		for _, m := range syllableMoras(tt.syllable) {
			got += m.Text
		}
		if got != tt.want {
			t.Errorf("syllableMoras(%q): got %q, want %q", tt.syllable, got, tt.want)
		}
	}
}

func TestMapLexicon(t *testing.T) {
	lex := NewMapLexicon()
	for _, w := range []Word{
		{Surface: "東京", Pronunciation: "トーキョー", Accent: 0},
		{Surface: "東京タワー", Pronunciation: "トーキョータワー", Accent: 5},
	} {
		if err := lex.Add(w); err != nil {
			t.Fatalf("Add(%v): %v", w, err)
		}
	}
	w, n, ok := lex.Match([]rune("東京タワーへ"))
	if !ok || n != 5 || w.Surface != "東京タワー" {
		t.Errorf("longest match: got (%v, %d, %v)", w, n, ok)
	}

	if err := lex.Add(Word{Surface: "x", Pronunciation: "abc"}); err == nil {
		t.Error("non-kana pronunciation should be rejected")
	}
	if err := lex.Add(Word{Surface: "y", Pronunciation: "ア", Accent: 3}); err == nil {
		t.Error("accent beyond mora count should be rejected")
	}

	ap, err := (Word{Surface: "東京", Pronunciation: "トーキョー"}).Phrase()
	if err != nil || ap.Accent != len(ap.Moras) {
		t.Errorf("accent 0 should mean flat: %+v, %v", ap, err)
	}
	if !lex.Remove("東京") || lex.Len() != 1 {
		t.Error("Remove should drop the entry")
	}
}

func TestScanMoras_LenientAndStrict(t *testing.T) {
	in := []rune("ーアxイ")

	got := scanMoras(in)
	if len(got) != 2 || got[0].Text != "ア" || got[1].Text != "イ" {
		t.Errorf("lenient scan should skip unknown runes: %+v", got)
	}

	_, err := scanMorasStrict(in)
	var ke *KanaError
	if !errors.As(err, &ke) || ke.Pos != 0 {
		t.Fatalf("strict scan should report the leading long vowel: %v", err)
	}
	if _, err := scanMorasStrict([]rune("アx")); !errors.As(err, &ke) || ke.Pos != 1 {
		t.Errorf("strict scan should report the unknown rune: %v", err)
	}

	moras, err := scanMorasStrict([]rune("きょー"))
	if err != nil || len(moras) != 2 || moras[1].Vowel != "o" {
		t.Errorf("long vowel should repeat the previous vowel: %+v, %v", moras, err)
	}
}
