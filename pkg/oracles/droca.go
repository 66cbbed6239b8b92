/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: droca.go
Description: Deterministic real-time one-counter target machine for the Akaylee
Learner. Serves as a reference oracle implementation: answers membership and
counter-value queries by simulation, and reports counter excursions so the
learner knows when to raise its counter limit. Machines can be built in code
or loaded from a YAML definition file.
*/

package oracles

import (
	"fmt"
	"os"

	"github.com/kleascm/akaylee-learner/pkg/words"
	"gopkg.in/yaml.v3"
)

// DROCA is a deterministic real-time one-counter automaton. A transition is
// selected by the current state, the input symbol, and whether the counter is
// currently zero; it moves to a new state and adjusts the counter by a delta.
// A word is accepted when the run ends in an accepting state with counter 0.
type DROCA struct {
	alphabet  *words.Alphabet
	initial   int
	accepting []bool
	names     []string

	trans map[transKey]transOut
}

type transKey struct {
	state int
	sym   words.Symbol
	zero  bool
}

type transOut struct {
	to    int
	delta int
}

// RunResult describes a simulation of the machine on a word.
type RunResult struct {
	Alive     bool // run completed without a missing transition or negative counter
	State     int
	Counter   int
	Excursion int // highest counter value seen along the run
}

// DROCASpec is the YAML shape of a machine definition.
type DROCASpec struct {
	Alphabet    string           `yaml:"alphabet"`
	Initial     string           `yaml:"initial"`
	Accepting   []string         `yaml:"accepting"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// TransitionSpec is a single transition row in a YAML definition. When is one
// of "zero", "positive" or "any" (the default), selecting the counter guard.
type TransitionSpec struct {
	From  string `yaml:"from"`
	On    string `yaml:"on"`
	When  string `yaml:"when"`
	To    string `yaml:"to"`
	Delta int    `yaml:"delta"`
}

// NewDROCA builds a machine from a spec, validating state names, symbols and
// guard keywords.
func NewDROCA(spec *DROCASpec) (*DROCA, error) {
	if spec.Alphabet == "" {
		return nil, fmt.Errorf("droca: empty alphabet")
	}
	m := &DROCA{
		alphabet: words.AlphabetFromString(spec.Alphabet),
		trans:    make(map[transKey]transOut),
	}
	index := make(map[string]int)
	stateOf := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		i := len(m.names)
		index[name] = i
		m.names = append(m.names, name)
		m.accepting = append(m.accepting, false)
		return i
	}
	if spec.Initial == "" {
		return nil, fmt.Errorf("droca: missing initial state")
	}
	m.initial = stateOf(spec.Initial)
	for _, name := range spec.Accepting {
		m.accepting[stateOf(name)] = true
	}
	for _, tr := range spec.Transitions {
		if len([]rune(tr.On)) != 1 {
			return nil, fmt.Errorf("droca: transition symbol %q is not a single symbol", tr.On)
		}
		sym := words.Symbol([]rune(tr.On)[0])
		if !m.alphabet.Contains(sym) {
			return nil, fmt.Errorf("droca: transition symbol %q not in alphabet", tr.On)
		}
		from, to := stateOf(tr.From), stateOf(tr.To)
		var guards []bool
		switch tr.When {
		case "zero":
			guards = []bool{true}
		case "positive":
			guards = []bool{false}
		case "", "any":
			guards = []bool{true, false}
		default:
			return nil, fmt.Errorf("droca: unknown guard %q (want zero, positive or any)", tr.When)
		}
		for _, zero := range guards {
			key := transKey{state: from, sym: sym, zero: zero}
			if _, dup := m.trans[key]; dup {
				return nil, fmt.Errorf("droca: duplicate transition from %s on %q (guard %v)", tr.From, tr.On, tr.When)
			}
			m.trans[key] = transOut{to: to, delta: tr.Delta}
		}
	}
	return m, nil
}

// LoadDROCA reads and builds a machine from a YAML file.
func LoadDROCA(path string) (*DROCA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("droca: failed to read %s: %w", path, err)
	}
	var spec DROCASpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("droca: failed to parse %s: %w", path, err)
	}
	return NewDROCA(&spec)
}

// Alphabet returns the machine's input alphabet.
func (m *DROCA) Alphabet() *words.Alphabet {
	return m.alphabet
}

// StateNames returns the machine's state names in definition order.
func (m *DROCA) StateNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// AcceptingStates returns the names of the accepting states.
func (m *DROCA) AcceptingStates() []string {
	var out []string
	for i, acc := range m.accepting {
		if acc {
			out = append(out, m.names[i])
		}
	}
	return out
}

// TransitionCount returns the number of guarded transitions.
func (m *DROCA) TransitionCount() int {
	return len(m.trans)
}

// Run simulates the machine on a word from the initial configuration.
func (m *DROCA) Run(w words.Word) RunResult {
	state, counter, excursion := m.initial, 0, 0
	for _, sym := range w {
		out, ok := m.trans[transKey{state: state, sym: sym, zero: counter == 0}]
		if !ok || counter+out.delta < 0 {
			return RunResult{Alive: false, State: state, Counter: counter, Excursion: excursion}
		}
		state = out.to
		counter += out.delta
		if counter > excursion {
			excursion = counter
		}
	}
	return RunResult{Alive: true, State: state, Counter: counter, Excursion: excursion}
}

// Member implements MembershipOracle.
func (m *DROCA) Member(w words.Word) bool {
	r := m.Run(w)
	return r.Alive && r.Counter == 0 && m.accepting[r.State]
}

// MemberBatch implements MembershipOracle.
func (m *DROCA) MemberBatch(ws []words.Word) []bool {
	out := make([]bool, len(ws))
	for i, w := range ws {
		out[i] = m.Member(w)
	}
	return out
}

// CounterValue implements CounterValueOracle. Only meaningful for words that
// are prefixes of the language; for those the run is necessarily alive.
func (m *DROCA) CounterValue(w words.Word) int {
	return m.Run(w).Counter
}

// CounterValueBatch implements CounterValueOracle.
func (m *DROCA) CounterValueBatch(ws []words.Word) []int {
	out := make([]int, len(ws))
	for i, w := range ws {
		out[i] = m.CounterValue(w)
	}
	return out
}

// Excursion returns the highest counter value the machine reaches on w.
func (m *DROCA) Excursion(w words.Word) int {
	return m.Run(w).Excursion
}
