package segmenter

import "github.com/custodia-labs/shelf/internal/core/domain"

// Stats describes what the fold did with blocks that produced no draft.
type Stats struct {
	// Orphans counts photo blocks seen while no group was active.
	Orphans int

	// Inert counts blank blocks absorbed by an active group.
	Inert int

	// Service counts service blocks.
	Service int

	// Flagged counts continuations attached out of sequence.
	Flagged int
}

// group is an open draft plus the bookkeeping needed to extend it.
type group struct {
	draft  domain.Draft
	seen   map[string]bool
	lastID int
}

func (g *group) addPhotos(refs []string) {
	for _, ref := range refs {
		if g.seen[ref] {
			continue
		}
		g.seen[ref] = true
		g.draft.PhotoRefs = append(g.draft.PhotoRefs, ref)
	}
}

// state is the fold accumulator. A nil active group is the no-group state.
type state struct {
	active *group
	drafts []domain.Draft
	stats  Stats
}

func (s *state) close() {
	if s.active == nil {
		return
	}
	s.drafts = append(s.drafts, s.active.draft)
	s.active = nil
}

// Segment folds messages into drafts in input order.
func Segment(msgs []domain.RawMessage) ([]domain.Draft, Stats) {
	s := state{}
	for _, m := range msgs {
		s = step(s, m)
	}
	s.close()
	return s.drafts, s.stats
}

// step applies a single message to the accumulator.
func step(s state, m domain.RawMessage) state {
	switch {
	case m.Service:
		s.close()
		s.stats.Service++

	case m.HasText:
		s.close()
		g := &group{
			draft:  domain.Draft{SourceID: m.ID, Text: m.Text},
			seen:   make(map[string]bool, len(m.PhotoRefs)),
			lastID: m.ID,
		}
		g.addPhotos(m.PhotoRefs)
		s.active = g

	case s.active == nil:
		if len(m.PhotoRefs) > 0 {
			s.stats.Orphans++
		}

	case len(m.PhotoRefs) > 0:
		g := s.active
		if m.ID != g.lastID+1 {
			g.draft.Flagged = append(g.draft.Flagged, m.ID)
			s.stats.Flagged++
		}
		g.draft.Continuations = append(g.draft.Continuations, m.ID)
		g.addPhotos(m.PhotoRefs)
		g.lastID = m.ID

	default:
		s.active.lastID = m.ID
		s.stats.Inert++
	}
	return s
}
