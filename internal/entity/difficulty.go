package entity

import (
	"errors"
	"fmt"
	"strings"
)

type Difficulty string

const (
	EasyDifficulty   Difficulty = "easy"
	MediumDifficulty Difficulty = "medium"
	HardDifficulty   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

func ParseDifficulty(value string) (Difficulty, error) {
	switch difficulty := Difficulty(strings.ToLower(strings.TrimSpace(value))); difficulty {
	case EasyDifficulty, MediumDifficulty, HardDifficulty:
		return difficulty, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, value)
	}
}

func (that Difficulty) IsValid() bool {
	_, err := ParseDifficulty(string(that))
	return err == nil
}
