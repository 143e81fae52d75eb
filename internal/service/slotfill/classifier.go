package slotfill

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seu-repo/songorder/internal/domain"
)

type Question string

const (
	QuestionConfirmation Question = "confirmation"
	QuestionIncludeName  Question = "include_name"
	QuestionLyricsReview Question = "lyrics_review"
)

// ImplicitRevisionMinRunes is the length above which an unmatched lyrics
// review answer is taken as revision feedback.
const ImplicitRevisionMinRunes = 12

// noNotesMaxRunes bounds how long a "no notes" answer can be.
const noNotesMaxRunes = 24

// keywordSet matches substrings, so an affirmative stem must not prefix its
// own negation ("ekle" vs "eklemeyin"). Short stems like that go in exact,
// which only matches the whole answer.
type keywordSet struct {
	affirmative []string
	negative    []string
	exact       []string
	reask       string
}

var keywordSets = map[Question]keywordSet{
	QuestionConfirmation: {
		affirmative: []string{"evet", "tamam", "onaylıyorum", "onayla", "sipariş ver", "devam", "ok", "okay", "1"},
		negative:    []string{"hayır", "hayir", "iptal", "vazgeçtim", "istemiyorum", "2"},
		reask:       `Siparişinizi onaylıyor musunuz? Lütfen "Evet" ya da "Hayır" olarak yanıtlayın (1: Evet, 2: Hayır).`,
	},
	QuestionIncludeName: {
		affirmative: []string{"evet", "olsun", "geçsin", "gecsin", "eklensin", "ekleyin", "ekleyebilirsiniz", "tabii", "tabi", "isterim", "1"},
		negative:    []string{"hayır", "hayir", "olmasın", "olmasin", "geçmesin", "gecmesin", "eklemeyin", "eklenmesin", "istemiyorum", "istemem", "gerek yok", "2"},
		exact:       []string{"ekle"},
		reask:       `İsim şarkı sözlerinde geçsin mi? Lütfen "Evet" ya da "Hayır" olarak yanıtlayın (1: Evet, 2: Hayır).`,
	},
	QuestionLyricsReview: {
		affirmative: []string{"onaylıyorum", "onayliyorum", "beğendim", "begendim", "harika", "mükemmel", "mukemmel", "süper", "super", "tamam", "evet", "1"},
		negative:    []string{"onaylamıyorum", "onaylamiyorum", "beğenmiyorum", "begenmiyorum", "değiştir", "degistir", "revize", "düzelt", "duzelt", "beğenmedim", "begenmedim", "olmamış", "olmamis", "hayır", "hayir", "2"},
		exact:       []string{"onayla"},
		reask:       `Sözleri onaylıyor musunuz? Onay için "Onaylıyorum", değişiklik için isteğinizi yazın (1: Onayla, 2: Değiştir).`,
	},
}

// noNotesAnswers match the whole answer; noNotesWords match any single word.
var (
	noNotesAnswers = []string{"-", "--", ".", "yok", "gerek yok", "yok teşekkürler"}
	noNotesWords   = []string{"yok", "hayır", "hayir", "istemiyorum", "boş", "bos"}
)

// Classifier answers closed questions without calling the oracle.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify matches the turn against the question's keyword sets. The
// affirmative set is checked first, so a turn matching both is affirmative.
func (c *Classifier) Classify(q Question, turn string) (domain.Classification, error) {
	set, ok := keywordSets[q]
	if !ok {
		return domain.Undetermined, &domain.UndeterminedClassificationError{Question: string(q), Reask: ""}
	}
	text := domain.Fold(turn)
	if containsAny(text, set.affirmative) || equalsAny(text, set.exact) {
		return domain.Affirmative, nil
	}
	if containsAny(text, set.negative) {
		return domain.Negative, nil
	}
	return domain.Undetermined, &domain.UndeterminedClassificationError{Question: string(q), Reask: set.reask}
}

// ReviewDecision is a classified lyrics review answer.
type ReviewDecision struct {
	Action  domain.ReviewAction
	Request string
}

// ClassifyReview maps a lyrics review turn to Approve or Revise. An unmatched
// answer longer than ImplicitRevisionMinRunes is treated as revision feedback.
func (c *Classifier) ClassifyReview(turn string) (ReviewDecision, error) {
	cls, err := c.Classify(QuestionLyricsReview, turn)
	trimmed := strings.TrimSpace(turn)
	switch cls {
	case domain.Affirmative:
		return ReviewDecision{Action: domain.ReviewApprove}, nil
	case domain.Negative:
		return ReviewDecision{Action: domain.ReviewRevise, Request: trimmed}, nil
	}
	if utf8.RuneCountInString(trimmed) > ImplicitRevisionMinRunes {
		return ReviewDecision{Action: domain.ReviewRevise, Request: trimmed}, nil
	}
	return ReviewDecision{}, err
}

// NoNotes reports whether a notes answer means "nothing to add".
func (c *Classifier) NoNotes(turn string) bool {
	text := domain.Fold(turn)
	if text == "" {
		return true
	}
	if utf8.RuneCountInString(text) > noNotesMaxRunes {
		return false
	}
	if equalsAny(text, noNotesAnswers) {
		return true
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if equalsAny(w, noNotesWords) {
			return true
		}
	}
	return false
}

// Reask returns the closed-form prompt for a question.
func Reask(q Question) string {
	return keywordSets[q].reask
}

func equalsAny(text string, values []string) bool {
	for _, v := range values {
		if text == v {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
