// Package domain contains core concepts of the deliberation system.
// This file defines Participant entities and the cyclic speaking order.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"boardroom/errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Participant is a fixed logical role taking part in a conversation.
// It is immutable once built into a Roster.
type Participant struct {
	Name         string
	Description  string
	Instructions string
}

// Roster is the total cyclic order of participants for one request.
type Roster struct {
	participants []Participant
	index        map[string]int
}

func NewRoster(participants ...Participant) (Roster, error) {
	if len(participants) == 0 {
		return Roster{}, errors.ErrEmptyRoster
	}
	index := make(map[string]int, len(participants))
	participants = append([]Participant(nil), participants...)
	for i, p := range participants {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return Roster{}, fmt.Errorf("participant %d has no name", i)
		}
		if _, ok := index[name]; ok {
			return Roster{}, fmt.Errorf("%w: %s", errors.ErrDuplicateName, name)
		}
		index[name] = i
		participants[i].Name = name
	}
	return Roster{participants: participants, index: index}, nil
}

func (r Roster) Len() int { return len(r.participants) }

func (r Roster) At(i int) Participant { return r.participants[i] }

// Names returns the participant names in speaking order.
func (r Roster) Names() []string {
	return lo.Map(r.participants, func(p Participant, _ int) string { return p.Name })
}

func (r Roster) Get(name string) (Participant, bool) {
	i, ok := r.index[strings.TrimSpace(name)]
	if !ok {
		return Participant{}, false
	}
	return r.participants[i], true
}

// Lookup trims the candidate before matching it against known names.
func (r Roster) Lookup(candidate string) (string, bool) {
	name := strings.TrimSpace(candidate)
	if name == "" {
		return "", false
	}
	_, ok := r.index[name]
	return name, ok
}

func (r Roster) Has(candidate string) bool {
	_, ok := r.Lookup(candidate)
	return ok
}
