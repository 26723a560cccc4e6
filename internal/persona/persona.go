// Package persona answers chat messages on behalf of the AI personas with canned replies.
package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
)

//go:embed personas.yaml
var defaultPersonasYAML []byte

var ErrPersonaNotFound = fmt.Errorf("%w: persona", apperror.ErrNotFound)

type ReplyType string

const (
	ReplyText       ReplyType = "text"
	ReplyGameInvite ReplyType = "game-invite"
)

type Persona struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Greetings []string `yaml:"greetings" json:"-"`
	Responses []string `yaml:"responses" json:"-"`
}

type Reply struct {
	Content string    `json:"content"`
	Type    ReplyType `json:"type"`
}

// Catalog is the decoded persona table together with the replies every persona shares.
type Catalog struct {
	Default  string    `yaml:"default"`
	Personas []Persona `yaml:"personas"`

	GameKeywords     []string `yaml:"game_keywords"`
	GameAcceptChance float64  `yaml:"game_accept_chance"`
	GameAccept       []string `yaml:"game_accept"`

	GreetingWords        []string `yaml:"greeting_words"`
	GreetingHistoryLimit int      `yaml:"greeting_history_limit"`

	Questions []string `yaml:"questions"`

	EmotionalWords []string `yaml:"emotional_words"`
	Emotional      []string `yaml:"emotional"`

	GameComments []string `yaml:"game_comments"`
}

type Responder struct {
	catalog Catalog
	byID    map[string]*Persona

	randFloat func() float64
	randIntn  func(int) int
}

// Load reads the persona table from path, or the built-in table when path is empty.
func Load(path string) (*Responder, error) {
	data := defaultPersonasYAML

	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read personas %s: %w", path, err)
		}
	}

	return NewResponder(data)
}

func NewResponder(data []byte) (*Responder, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	if len(catalog.Personas) == 0 {
		return nil, errors.New("persona table is empty")
	}

	byID := make(map[string]*Persona, len(catalog.Personas))
	for i := range catalog.Personas {
		persona := &catalog.Personas[i]
		if persona.ID == "" || len(persona.Responses) == 0 {
			return nil, fmt.Errorf("persona %d needs an id and at least one response", i)
		}

		byID[persona.ID] = persona
	}

	if _, ok := byID[catalog.Default]; !ok {
		catalog.Default = catalog.Personas[0].ID
	}

	return &Responder{
		catalog:   catalog,
		byID:      byID,
		randFloat: rand.Float64,
		randIntn:  rand.IntN,
	}, nil
}

func (that *Responder) Personas() []Persona {
	return append([]Persona(nil), that.catalog.Personas...)
}

func (that *Responder) Get(id string) (Persona, error) {
	persona, ok := that.byID[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrPersonaNotFound, id)
	}

	return *persona, nil
}

// Reply picks an answer to message. historyLen is the number of messages already
// exchanged in the chat. Unknown personas answer as the default one.
func (that *Responder) Reply(personaID, message string, historyLen int) Reply {
	persona, ok := that.byID[personaID]
	if !ok {
		persona = that.byID[that.catalog.Default]
	}

	content := strings.ToLower(message)

	if containsAny(content, that.catalog.GameKeywords) && that.randFloat() < that.catalog.GameAcceptChance {
		return Reply{Content: that.pick(that.catalog.GameAccept), Type: ReplyGameInvite}
	}

	if containsAny(content, that.catalog.GreetingWords) && historyLen <= that.catalog.GreetingHistoryLimit && len(persona.Greetings) > 0 {
		return Reply{Content: that.pick(persona.Greetings), Type: ReplyText}
	}

	if strings.Contains(content, "?") && len(that.catalog.Questions) > 0 {
		return Reply{Content: that.pick(that.catalog.Questions), Type: ReplyText}
	}

	if containsAny(content, that.catalog.EmotionalWords) && len(that.catalog.Emotional) > 0 {
		return Reply{Content: that.pick(that.catalog.Emotional), Type: ReplyText}
	}

	return Reply{Content: that.pick(persona.Responses), Type: ReplyText}
}

// GameComment is the persona's remark after a bot move.
func (that *Responder) GameComment() string {
	return that.pick(that.catalog.GameComments)
}

func (that *Responder) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}

	return options[that.randIntn(len(options))]
}

func containsAny(content string, words []string) bool {
	for _, word := range words {
		if strings.Contains(content, word) {
			return true
		}
	}

	return false
}
