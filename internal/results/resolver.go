package results

import "fmt"

// Decision is the answer to a duplicate conflict.
type Decision int

const (
	// DecisionAccept overrides the existing record with the candidate.
	DecisionAccept Decision = iota
	// DecisionDecline keeps the existing record and appends the candidate
	// as an additional entry for the same identity key.
	DecisionDecline
)

// Action reports what a Save actually did to the store.
type Action int

const (
	// ActionAppended means the candidate had a previously-unseen identity
	// key and was appended.
	ActionAppended Action = iota
	// ActionReplaced means the candidate overrode an existing duplicate.
	ActionReplaced
	// ActionKeptBoth means the candidate was appended alongside an
	// existing duplicate.
	ActionKeptBoth
)

func (a Action) String() string {
	switch a {
	case ActionAppended:
		return "appended"
	case ActionReplaced:
		return "replaced"
	case ActionKeptBoth:
		return "kept both"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Conflict describes a duplicate: a candidate record whose identity key
// matches an already-stored record.
type Conflict struct {
	Existing      Record
	ExistingIndex int
	Candidate     Record
}

// Recommendation returns the default resolution: prefer the record with
// the higher completed-sample count, with the candidate winning ties
// (most recent wins when completeness is equal).
func (c Conflict) Recommendation() Decision {
	if c.Candidate.Samples.Completed >= c.Existing.Samples.Completed {
		return DecisionAccept
	}
	return DecisionDecline
}

// DecisionProvider yields an accept/decline decision for a described
// conflict. Implementations include the interactive terminal prompt and
// fixed test doubles.
type DecisionProvider interface {
	Decide(c Conflict) (Decision, error)
}

// DecisionFunc adapts a function to the DecisionProvider interface.
type DecisionFunc func(c Conflict) (Decision, error)

func (f DecisionFunc) Decide(c Conflict) (Decision, error) { return f(c) }

// Resolver decides whether a new record duplicates a stored one and
// reconciles the store accordingly.
type Resolver struct {
	store   *Store
	decider DecisionProvider
	force   bool
}

// NewResolver creates a resolver that saves through the given store,
// consulting decider when a duplicate conflict arises. decider may be nil,
// in which case any conflict without the force flag fails.
func NewResolver(store *Store, decider DecisionProvider) *Resolver {
	return &Resolver{store: store, decider: decider}
}

// SetForce makes conflicts resolve to accept (override) without consulting
// the decision provider.
func (r *Resolver) SetForce(force bool) {
	r.force = force
}

// Save persists a record into its model's store. A candidate whose
// identity key matches no stored record is appended. On a duplicate the
// decision signal determines whether the existing record is overridden in
// place or both records are kept. When several stored records share the
// candidate's identity key, resolution runs against the most-recently-
// appended match only; the others are left untouched.
//
// Every path either leaves the store fully consistent or changes nothing
// and returns the error.
func (r *Resolver) Save(rec Record) (Action, error) {
	if err := rec.Validate(); err != nil {
		return 0, fmt.Errorf("invalid record: %w", err)
	}

	records, err := r.store.Load(rec.Model)
	if err != nil {
		return 0, err
	}

	key := rec.IdentityKey()
	existingIndex := -1
	for i, existing := range records {
		if existing.IdentityKey() == key {
			existingIndex = i
		}
	}

	if existingIndex < 0 {
		if err := r.store.Append(rec.Model, rec); err != nil {
			return 0, err
		}
		return ActionAppended, nil
	}

	conflict := Conflict{
		Existing:      records[existingIndex],
		ExistingIndex: existingIndex,
		Candidate:     rec,
	}

	decision, err := r.decide(conflict)
	if err != nil {
		return 0, err
	}

	switch decision {
	case DecisionAccept:
		if err := r.store.Replace(rec.Model, existingIndex, rec); err != nil {
			return 0, err
		}
		return ActionReplaced, nil
	default:
		if err := r.store.Append(rec.Model, rec); err != nil {
			return 0, err
		}
		return ActionKeptBoth, nil
	}
}

func (r *Resolver) decide(c Conflict) (Decision, error) {
	if r.force {
		return DecisionAccept, nil
	}
	if r.decider == nil {
		return 0, &ConflictResolutionError{
			Model:  c.Candidate.Model,
			Task:   c.Candidate.Task,
			Reason: "no decision provider and force flag not set",
		}
	}
	decision, err := r.decider.Decide(c)
	if err != nil {
		return 0, &ConflictResolutionError{
			Model:  c.Candidate.Model,
			Task:   c.Candidate.Task,
			Reason: err.Error(),
		}
	}
	return decision, nil
}
