package slotfill

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/seu-repo/songorder/internal/domain"
)

// Example is a worked input/output pair shown to the oracle.
type Example struct {
	Turn   string
	Output string
}

// Contract describes one extraction task as data: what to fill, which values
// are allowed, what context to show and what must never appear.
type Contract struct {
	Name        string
	Goal        string
	Slots       []domain.SlotName
	Extra       []string
	Companions  []domain.SlotName
	Rules       []string
	Examples    []Example
	Forbidden   []string
	Temperature float64
}

// Keys lists every JSON key the oracle may return, besides "response".
func (c Contract) Keys() []string {
	keys := make([]string, 0, len(c.Slots)+len(c.Extra))
	for _, s := range c.Slots {
		keys = append(keys, string(s))
	}
	return append(keys, c.Extra...)
}

// orderSlots are the oracle-filled slots a later turn may correct.
var orderSlots = []domain.SlotName{
	domain.SlotSongType,
	domain.SlotArtistStyle,
	domain.SlotSongStyle,
	domain.SlotVocal,
	domain.SlotRecipientRelation,
	domain.SlotRecipientName,
}

const correctionRule = "CURRENT VALUES also lists slots the user already answered. Return a new value for one of them only when this message explicitly corrects it; otherwise return null for it."

// WithFilled returns a copy of c that may also return every order slot already
// set in state, so a turn like "kadın değil erkek olsun" can correct vocal
// while another slot is being asked. The merger decides whether the new value
// replaces the old one.
func (c Contract) WithFilled(state domain.PartialOrderState) Contract {
	own := make(map[domain.SlotName]bool, len(c.Slots))
	for _, s := range c.Slots {
		own[s] = true
	}
	var added []domain.SlotName
	for _, s := range orderSlots {
		if !own[s] && state.Has(s) {
			added = append(added, s)
		}
	}
	if len(added) == 0 {
		return c
	}
	out := c
	out.Slots = append(append([]domain.SlotName{}, c.Slots...), added...)
	out.Rules = append(append([]string{}, c.Rules...), correctionRule)
	return out
}

type vocabLine struct {
	Slot   domain.SlotName
	Values string
}

type currentLine struct {
	Slot  domain.SlotName
	Value string
	Set   bool
}

type promptData struct {
	Contract Contract
	Keys     []string
	Vocab    []vocabLine
	Current  []currentLine
	Turn     string
}

var commonRules = []string{
	"Return exactly one JSON object. No Markdown, no code fences, no text before or after it.",
	"Every slot value is a string or null. Use null when the message does not mention that slot.",
	"Never return null or an empty string to erase a slot that already has a value under CURRENT VALUES. Only change it when the user explicitly corrects it.",
	`"response" is one or two short, warm Turkish sentences that acknowledge the answer. Do not ask about other slots.`,
}

const contractTemplate = `You are the order assistant of a personalized song service. Conversation language is Turkish.

TASK ({{.Contract.Name}}): {{.Contract.Goal}}

OUTPUT SHAPE:
{ {{- range .Keys}}"{{.}}": string|null, {{end}}"response": string }
{{if .Vocab}}
ALLOWED VALUES (use these exact spellings):
{{- range .Vocab}}
- {{.Slot}}: {{.Values}}
{{- end}}
{{end}}{{if .Current}}
CURRENT VALUES:
{{- range .Current}}
- {{.Slot}}: {{if .Set}}{{.Value}}{{else}}(unset){{end}}
{{- end}}
{{end}}
RULES:
{{- range $i, $r := .Contract.Rules}}
{{inc $i}}. {{$r}}
{{- end}}
{{if .Contract.Forbidden}}
FORBIDDEN OUTPUTS:
{{- range .Contract.Forbidden}}
- {{.}}
{{- end}}
{{end}}{{if .Contract.Examples}}
EXAMPLES:
{{- range .Contract.Examples}}
User: {{.Turn}}
Output: {{.Output}}
{{- end}}
{{end}}
Before answering, check your output against every rule and forbidden output above and fix it.

USER MESSAGE:
"""{{.Turn}}"""`

var promptTemplate = template.Must(template.New("contract").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(contractTemplate))

// Render builds the oracle prompt for this contract.
func (c Contract) Render(state domain.PartialOrderState, turn string) (string, error) {
	data := promptData{
		Contract: c,
		Keys:     c.Keys(),
		Turn:     strings.TrimSpace(turn),
	}
	data.Contract.Rules = append(append([]string{}, c.Rules...), commonRules...)

	for _, s := range c.Slots {
		if vocab := domain.ClosedVocabulary(s); vocab != nil {
			data.Vocab = append(data.Vocab, vocabLine{Slot: s, Values: strings.Join(vocab, ", ")})
		}
	}
	seen := map[domain.SlotName]bool{}
	for _, s := range append(append([]domain.SlotName{}, c.Slots...), c.Companions...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		v, ok := state.Get(s)
		data.Current = append(data.Current, currentLine{Slot: s, Value: v, Set: ok})
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render contract %s: %w", c.Name, err)
	}
	return b.String(), nil
}

const (
	deidentifyRule = "If the user names a singer or band, NEVER write the name. Describe their style instead (era, instruments, tempo, atmosphere) in artist_style_description."
	noVocalRule    = "Do not mention vocal gender in artist_style_description. Vocal is a separate slot."
	fusionRule     = "For a genre fusion (e.g. arabesk rap), put the dominant genre in song_type and describe the blend in artist_style_description."
)

var styleForbidden = []string{
	"Any real singer, band or artist name in artist_style_description.",
	`"female vocals", "male vocals", "kadın vokal", "erkek vokal" in artist_style_description.`,
	"A song_type that is not in the allowed list.",
}

var ContractIntake = Contract{
	Name: "intake",
	Goal: "Read the customer's first message and fill every order slot it mentions.",
	Slots: []domain.SlotName{
		domain.SlotSongType,
		domain.SlotArtistStyle,
		domain.SlotSongStyle,
		domain.SlotVocal,
		domain.SlotRecipientRelation,
		domain.SlotRecipientName,
	},
	Rules: []string{
		"Map synonyms to the allowed values: hüzünlü -> Duygusal, aşk -> Romantik, neşeli/hareketli -> Eğlenceli, huzurlu/yavaş -> Sakin.",
		fusionRule,
		deidentifyRule,
		noVocalRule,
		"recipient_relation can be any person, group, business, place or theme the song is for. recipient_name is only a literal name the user wrote.",
	},
	Forbidden: styleForbidden,
	Examples: []Example{
		{
			Turn:   "Annem Ayşe için duygusal bir arabesk şarkı istiyorum, kadın sesi olsun",
			Output: `{"song_type": "Arabesk", "artist_style_description": null, "song_style": "Duygusal", "vocal": "Kadın", "recipient_relation": "Anne", "recipient_name": "Ayşe", "response": "Ne güzel, anneniz Ayşe Hanım için duygusal bir arabesk şarkı hazırlayalım."}`,
		},
		{
			Turn:   "Merhaba, bir şarkı sipariş etmek istiyorum",
			Output: `{"song_type": null, "artist_style_description": null, "song_style": null, "vocal": null, "recipient_relation": null, "recipient_name": null, "response": "Merhaba, size özel bir şarkı hazırlamaktan mutluluk duyarız."}`,
		},
	},
	Temperature: 0.1,
}

var ContractGenre = Contract{
	Name:       "genre",
	Goal:       "Determine the song genre and, when given, a style description.",
	Slots:      []domain.SlotName{domain.SlotSongType, domain.SlotArtistStyle},
	Companions: []domain.SlotName{domain.SlotVocal},
	Rules: []string{
		fusionRule,
		deidentifyRule,
		noVocalRule,
	},
	Forbidden: styleForbidden,
	Examples: []Example{
		{
			Turn:   "Sezen Aksu tarzı bir şey olsun",
			Output: `{"song_type": "Pop", "artist_style_description": "90'lar Türk popu, duygusal melodiler, akustik gitar ve yaylılar", "response": "Harika, 90'lar Türk popu havasında bir şarkı olacak."}`,
		},
		{
			Turn:   "arabesk rap gibi bir şey",
			Output: `{"song_type": "Rap", "artist_style_description": "arabesk melodilerle harmanlanmış rap, bağlama ve yaylı altyapı", "response": "Arabesk esintili bir rap, çok iyi bir seçim."}`,
		},
		{
			Turn:   "rock",
			Output: `{"song_type": "Rock", "artist_style_description": null, "response": "Rock, harika bir seçim."}`,
		},
	},
	Temperature: 0.2,
}

var ContractMood = Contract{
	Name:  "mood",
	Goal:  "Determine the mood of the song.",
	Slots: []domain.SlotName{domain.SlotSongStyle},
	Rules: []string{
		"Map synonyms to the allowed values: hüzünlü/duygulu -> Duygusal, aşk/tutkulu -> Romantik, neşeli/hareketli/dans -> Eğlenceli, huzurlu/yavaş/dingin -> Sakin.",
	},
	Forbidden: []string{"A song_style that is not in the allowed list."},
	Examples: []Example{
		{
			Turn:   "biraz hüzünlü olsun",
			Output: `{"song_style": "Duygusal", "response": "Duygusal bir hava, çok anlamlı olacak."}`,
		},
	},
	Temperature: 0.1,
}

var ContractVocal = Contract{
	Name:  "vocal",
	Goal:  "Determine who should sing the song.",
	Slots: []domain.SlotName{domain.SlotVocal},
	Rules: []string{
		"Map synonyms: kadın/bayan/female -> Kadın, erkek/male -> Erkek, fark etmez/farketmez/ikisi de -> Fark etmez.",
		"If the user corrects a previous choice (\"kadın değil erkek olsun\"), return the corrected value.",
	},
	Forbidden: []string{"A vocal that is not in the allowed list."},
	Examples: []Example{
		{
			Turn:   "kadın değil erkek olsun",
			Output: `{"vocal": "Erkek", "response": "Tamam, erkek vokal ile devam ediyoruz."}`,
		},
	},
	Temperature: 0,
}

var ContractRecipient = Contract{
	Name:  "recipient",
	Goal:  "Determine who or what the song is for and, if written, their name.",
	Slots: []domain.SlotName{domain.SlotRecipientRelation, domain.SlotRecipientName},
	Rules: []string{
		"recipient_relation can be any person (anne, sevgili, arkadaş), group, business, place or theme (a city, a team, graduation). Accept all of them.",
		"recipient_name is only a literal name the user wrote. Never invent one; use null when no name is given.",
	},
	Examples: []Example{
		{
			Turn:   "sevgilim Elif için",
			Output: `{"recipient_relation": "Sevgili", "recipient_name": "Elif", "response": "Elif için çok güzel bir sürpriz olacak."}`,
		},
		{
			Turn:   "kafemiz için bir tanıtım şarkısı",
			Output: `{"recipient_relation": "Kafe", "recipient_name": null, "response": "Kafeniz için akılda kalan bir şarkı hazırlayalım."}`,
		},
	},
	Temperature: 0.1,
}

// VerdictKey is returned by ContractStoryQuality: "ok" or "weak".
const VerdictKey = "verdict"

var ContractStoryQuality = Contract{
	Name:       "story_quality",
	Goal:       "Judge whether the story gives enough personal, emotional material to write song lyrics.",
	Extra:      []string{VerdictKey},
	Companions: []domain.SlotName{domain.SlotRecipientRelation, domain.SlotSongStyle},
	Rules: []string{
		`verdict is "ok" when the text contains any personal memory, feeling or detail about the recipient, otherwise "weak".`,
		`Only random characters, an unrelated question or a single generic sentence are "weak". When in doubt answer "ok".`,
		`When verdict is "weak", "response" politely asks for a more personal story in Turkish.`,
	},
	Examples: []Example{
		{
			Turn:   "Annemle her pazar sabahı balkonda kahve içerdik, o anları çok özlüyorum",
			Output: `{"verdict": "ok", "response": "Çok güzel bir anı, şarkıya mutlaka işleyeceğiz."}`,
		},
		{
			Turn:   "asdasd qwe qwe qwe qwe qwe",
			Output: `{"verdict": "weak", "response": "Şarkıyı size özel yazabilmemiz için biraz daha kişisel bir hikaye paylaşır mısınız?"}`,
		},
	},
	Temperature: 0,
}
