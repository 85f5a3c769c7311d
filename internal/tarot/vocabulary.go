package tarot

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"mystique/internal/persona"
)

//go:embed vocabulary.yaml
var vocabularyYAML []byte

// languageVocabulary lists the marker strings the detector and formatter
// recognize for one language.
type languageVocabulary struct {
	CardLabel        string   `yaml:"card_label"`
	MessageMarkers   []string `yaml:"message_markers"`
	PhraseIndicators []string `yaml:"phrase_indicators"`
	DomainTerms      []string `yaml:"domain_terms"`
}

type vocabularyFile struct {
	Version   int                                     `yaml:"version"`
	Languages map[persona.Language]languageVocabulary `yaml:"languages"`
}

// vocabulary is the compiled form: the YAML markers turned into the regular
// expressions the rule table runs.
type vocabulary struct {
	cardLabel        string
	cardLabelRe      *regexp.Regexp
	messageMarkerRe  *regexp.Regexp
	messageSplitRe   *regexp.Regexp
	phraseIndicators []string
	domainTerms      []string
}

var vocabularies map[persona.Language]*vocabulary

// Punctuation cues shared across languages: asterisked stage directions,
// ellipses, parenthetical asides.
var (
	doubleAsteriskRe = regexp.MustCompile(`\*\*[^*]+\*\*`)
	actionRe         = regexp.MustCompile(`(^|[^*])\*[^*\n]+\*([^*]|$)`)
	parentheticalRe  = regexp.MustCompile(`\([^)]+\)`)
)

func init() {
	var err error
	vocabularies, err = loadVocabularies(vocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("tarot: invalid embedded vocabulary: %v", err))
	}
}

func loadVocabularies(raw []byte) (map[persona.Language]*vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported vocabulary version %d", file.Version)
	}

	compiled := make(map[persona.Language]*vocabulary, len(file.Languages))
	for lang, langVocab := range file.Languages {
		if langVocab.CardLabel == "" || len(langVocab.MessageMarkers) == 0 {
			return nil, fmt.Errorf("language %s: card_label and message_markers are required", lang)
		}

		markerAlt := make([]string, len(langVocab.MessageMarkers))
		for i, m := range langVocab.MessageMarkers {
			markerAlt[i] = regexp.QuoteMeta(m)
		}
		markers := strings.Join(markerAlt, "|")
		label := regexp.QuoteMeta(langVocab.CardLabel)

		compiled[lang] = &vocabulary{
			cardLabel: langVocab.CardLabel,
			// "Card: The Tower" or "**Kart:** Kule" up to sentence end or newline
			cardLabelRe: regexp.MustCompile(`(?i)\*{0,2}` + label + `:\*{0,2}\s*([^.!?\n]+)`),
			// bolded message marker with the card text captured up to period or newline
			messageMarkerRe:  regexp.MustCompile(`(?i)\*\*(?:` + markers + `):\*\*\s*([^.\n]+)`),
			messageSplitRe:   regexp.MustCompile(`(?i)\*\*(?:` + markers + `):\*\*\s*`),
			phraseIndicators: lowerAll(langVocab.PhraseIndicators),
			domainTerms:      lowerAll(langVocab.DomainTerms),
		}
	}
	return compiled, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// vocabularyFor resolves the vocabulary for a language, falling back to
// English for anything unknown.
func vocabularyFor(lang persona.Language) *vocabulary {
	if v, ok := vocabularies[lang]; ok {
		return v
	}
	return vocabularies[persona.LangEnglish]
}

// CardLabel returns the localized "Card" label used in formatted output.
func CardLabel(lang persona.Language) string {
	return vocabularyFor(lang).cardLabel
}
