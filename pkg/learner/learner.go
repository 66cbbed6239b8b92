/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learner.go
Description: Refinement loop for the Akaylee Learner. Drives the observation
table to a closed and consistent state, exports a hypothesis, asks the
equivalence oracle for a counterexample, and folds the counterexample back in
(raising the counter limit when its excursion exceeds the current one).
*/

package learner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/table"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/sirupsen/logrus"
)

// Config carries the parameters of one learning session.
type Config struct {
	Alphabet            *words.Alphabet
	InitialCounterLimit int

	// InitialSuffixes defaults to [epsilon]; epsilon is required and is
	// prepended if missing.
	InitialSuffixes []words.Word

	// MaxRounds bounds the number of hypothesis rounds, 0 means unbounded.
	MaxRounds int
}

// Stats accumulates what one session did.
type Stats struct {
	Rounds          int `json:"rounds"`
	Promotions      int `json:"promotions"`
	SuffixesAdded   int `json:"suffixes_added"`
	LimitRaises     int `json:"limit_raises"`
	Counterexamples int `json:"counterexamples"`
	States          int `json:"states"`
	CounterLimit    int `json:"counter_limit"`
}

// Learner runs one session against one target. Single-threaded; create a new
// Learner per session.
type Learner struct {
	id     uuid.UUID
	cfg    Config
	oracle oracles.QueryOracle
	equiv  oracles.EquivalenceOracle
	table  *table.Table
	logger *logrus.Logger
	stats  Stats
}

// New builds a learner. The query oracle answers membership and counter-value
// queries; the equivalence oracle judges hypotheses.
func New(cfg Config, o oracles.QueryOracle, e oracles.EquivalenceOracle, logger *logrus.Logger) (*Learner, error) {
	if o == nil {
		return nil, fmt.Errorf("learner: missing query oracle")
	}
	if e == nil {
		return nil, fmt.Errorf("learner: missing equivalence oracle")
	}
	if logger == nil {
		logger = logrus.New()
	}
	t, err := table.New(cfg.Alphabet, cfg.InitialCounterLimit, logger)
	if err != nil {
		return nil, err
	}
	hasEpsilon := false
	for _, s := range cfg.InitialSuffixes {
		if s.IsEpsilon() {
			hasEpsilon = true
			break
		}
	}
	if !hasEpsilon {
		cfg.InitialSuffixes = append([]words.Word{words.Epsilon()}, cfg.InitialSuffixes...)
	}
	return &Learner{
		id:     uuid.New(),
		cfg:    cfg,
		oracle: o,
		equiv:  e,
		table:  t,
		logger: logger,
	}, nil
}

// SessionID returns the session's unique identifier.
func (l *Learner) SessionID() uuid.UUID {
	return l.id
}

// Table exposes the observation table (read-side, for inspection and stats).
func (l *Learner) Table() *table.Table {
	return l.table
}

// Stats returns a snapshot of the session statistics so far.
func (l *Learner) Stats() Stats {
	s := l.stats
	s.CounterLimit = l.table.CounterLimit()
	return s
}

// Learn runs the session to completion: it returns the first hypothesis the
// equivalence oracle accepts. Cancellation is honored between refinement
// steps; a cancelled session returns ctx.Err().
func (l *Learner) Learn(ctx context.Context) (*automata.Hypothesis, error) {
	unclosed, err := l.table.Initialize([]words.Word{words.Epsilon()}, l.cfg.InitialSuffixes, l.oracle)
	if err != nil {
		return nil, err
	}
	l.logger.WithFields(logrus.Fields{
		"session":       l.id.String(),
		"alphabet_size": l.cfg.Alphabet.Size(),
		"counter_limit": l.table.CounterLimit(),
	}).Info("Learning session started")

	for {
		if l.cfg.MaxRounds > 0 && l.stats.Rounds >= l.cfg.MaxRounds {
			return nil, fmt.Errorf("learner: no equivalent hypothesis within %d rounds", l.cfg.MaxRounds)
		}
		l.stats.Rounds++

		if unclosed, err = l.makeClosedConsistent(ctx, unclosed); err != nil {
			return nil, err
		}
		h, err := automata.FromTable(l.table)
		if err != nil {
			return nil, err
		}
		l.stats.States = h.StateCount()
		l.logger.WithFields(logrus.Fields{
			"round":  l.stats.Rounds,
			"states": h.StateCount(),
		}).Info("Hypothesis built")

		ce := l.equiv.FindCounterexample(h)
		if ce == nil {
			l.logger.WithFields(logrus.Fields{
				"session": l.id.String(),
				"rounds":  l.stats.Rounds,
				"states":  h.StateCount(),
			}).Info("Learning session converged")
			return h, nil
		}
		l.stats.Counterexamples++
		l.logger.WithFields(logrus.Fields{
			"counterexample": ce.Word.String(),
			"excursion":      ce.Excursion,
		}).Debug("Counterexample received")

		if unclosed, err = l.foldCounterexample(ce); err != nil {
			return nil, err
		}
	}
}

// makeClosedConsistent repeatedly closes the table and repairs Sigma- and
// bottom-inconsistencies until neither remains.
func (l *Learner) makeClosedConsistent(ctx context.Context, unclosed []table.RowGroup) ([]table.RowGroup, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(unclosed) > 0 {
			// One representative per content group; the whole group follows it
			// into the same class once promoted.
			reps := make([]*table.Row, len(unclosed))
			for i, g := range unclosed {
				reps[i] = g.Representative()
			}
			var err error
			if unclosed, err = l.table.ToShortPrefixes(reps, l.oracle); err != nil {
				return nil, err
			}
			l.stats.Promotions += len(reps)
			continue
		}
		if desc := l.table.FindSigmaInconsistency(); desc != nil {
			l.logger.WithFields(logrus.Fields{
				"row_a":      desc.RowA.Word().String(),
				"row_b":      desc.RowB.Word().String(),
				"new_suffix": desc.NewSuffix.String(),
			}).Debug("Sigma-inconsistency found")
			var err error
			if unclosed, err = l.table.AddSuffixes([]words.Word{desc.NewSuffix}, l.oracle); err != nil {
				return nil, err
			}
			l.stats.SuffixesAdded++
			continue
		}
		if desc := l.table.FindBottomInconsistency(); desc != nil {
			suffix, classical := l.table.ResolveBottomInconsistency(desc, l.oracle)
			l.logger.WithFields(logrus.Fields{
				"known_row":   desc.KnownRow.Word().String(),
				"unknown_row": desc.UnknownRow.Word().String(),
				"new_suffix":  suffix.String(),
				"classical":   classical,
			}).Debug("Bottom-inconsistency found")
			var err error
			if classical {
				unclosed, err = l.table.AddSuffixes([]words.Word{suffix}, l.oracle)
			} else {
				unclosed, err = l.table.AddSuffixesOnlyForLanguage([]words.Word{suffix}, l.oracle)
			}
			if err != nil {
				return nil, err
			}
			l.stats.SuffixesAdded++
			continue
		}
		return unclosed, nil
	}
}

// foldCounterexample feeds a counterexample back into the table: its prefixes
// become short, and the counter limit is raised first when the target's
// excursion on the word exceeds it.
func (l *Learner) foldCounterexample(ce *oracles.Counterexample) ([]table.RowGroup, error) {
	if ce.Excursion > l.table.CounterLimit() {
		l.stats.LimitRaises++
		return l.table.IncreaseCounterLimit(ce.Excursion, []words.Word{ce.Word}, nil, l.oracle)
	}
	return l.table.AddShortPrefixes([]words.Word{ce.Word}, l.oracle)
}
